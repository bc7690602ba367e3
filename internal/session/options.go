package session

import (
	"github.com/lu-zhengda/pytestmap/internal/config"
	"github.com/lu-zhengda/pytestmap/internal/palette"
)

// Options are the view options of a session.
type Options struct {
	Margin   config.Margin `json:"margin"`
	RootName string        `json:"rootname"`
	Format   string        `json:"format"`
	Title    string        `json:"title"`
	Color    palette.Mode  `json:"color"`
}

// OptionsFrom takes the view options out of a loaded config.
func OptionsFrom(cfg *config.Config) Options {
	v := cfg.View
	return Options{
		Margin:   v.Margin,
		RootName: v.RootName,
		Format:   v.Format,
		Title:    v.Title,
		Color:    palette.ParseMode(v.Color),
	}
}

// DefaultOptions are the options of the default config.
func DefaultOptions() Options {
	return OptionsFrom(config.Default())
}

// MarginPatch overrides individual margins.
type MarginPatch struct {
	Top    *int `json:"top,omitempty"`
	Right  *int `json:"right,omitempty"`
	Bottom *int `json:"bottom,omitempty"`
	Left   *int `json:"left,omitempty"`
}

// OptionsPatch is a partial Options as sent in a message envelope. Only
// fields that are present override.
type OptionsPatch struct {
	Margin   *MarginPatch `json:"margin,omitempty"`
	RootName *string      `json:"rootname,omitempty"`
	Format   *string      `json:"format,omitempty"`
	Title    *string      `json:"title,omitempty"`
	Color    *string      `json:"color,omitempty"`
}

// Apply deep-merges p over o.
func (o Options) Apply(p OptionsPatch) Options {
	if m := p.Margin; m != nil {
		setInt(&o.Margin.Top, m.Top)
		setInt(&o.Margin.Right, m.Right)
		setInt(&o.Margin.Bottom, m.Bottom)
		setInt(&o.Margin.Left, m.Left)
	}
	if p.RootName != nil {
		o.RootName = *p.RootName
	}
	if p.Format != nil {
		o.Format = *p.Format
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.Color != nil {
		o.Color = palette.ParseMode(*p.Color)
	}
	return o
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
