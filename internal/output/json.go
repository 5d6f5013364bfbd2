package output

import (
	"encoding/json"
	"io"

	"github.com/okvist/refsolve/internal/resolver"
)

// JSONRenderer renders output in JSON format
type JSONRenderer struct{}

// jsonOutput is the structure for JSON output
type jsonOutput struct {
	Version string `json:"version"`
	*resolver.Result
}

// Render writes the resolve result in JSON format
func (r *JSONRenderer) Render(w io.Writer, result *resolver.Result) error {
	output := jsonOutput{
		Version: "1.0",
		Result:  result,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
