package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/okvist/refsolve/internal/diff"
	"github.com/okvist/refsolve/internal/resolver"
)

// TextRenderer renders the result as newline-separated "path<TAB>kind"
// entries, the form the invoking pipeline consumes.
type TextRenderer struct {
	ColorEnabled bool
}

// Render writes the resolve result in text format
func (r *TextRenderer) Render(w io.Writer, result *resolver.Result) error {
	// Configure color
	if !r.ColorEnabled {
		color.NoColor = true
	}

	for _, c := range result.Changes {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", c.Path, r.colorKind(c.Kind)); err != nil {
			return err
		}
	}

	return nil
}

func (r *TextRenderer) colorKind(k diff.ChangeKind) string {
	str := k.String()
	if !r.ColorEnabled {
		return str
	}

	switch k {
	case diff.KindAdded:
		return color.New(color.FgGreen).Sprint(str)
	case diff.KindModified:
		return color.New(color.FgYellow).Sprint(str)
	case diff.KindDeleted:
		return color.New(color.FgRed).Sprint(str)
	default:
		return str
	}
}
