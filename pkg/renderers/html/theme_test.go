package html_test

import (
	theme "github.com/goliatone/go-theme"
)

func studioManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "studio",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "surface": "#ffffff"},
		Assets: theme.Assets{
			Prefix: "/assets/studio",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"surface": "#1e1e1e"},
				Templates: map[string]string{"forms.flag": "themes/studio/flag.tpl"},
			},
		},
	}
}
