package evaluate

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteReport writes r as "json" or "yaml".
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case "", "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
