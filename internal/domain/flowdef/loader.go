package flowdef

import (
	"os"
	"strings"
)

// Loader loads flow definitions from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load loads a flow definition from the given path.
func (l *Loader) Load(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewFlowNotFoundError(path)
		}
		return nil, err
	}

	flow, err := Parse(data)
	if err != nil {
		if strings.Contains(err.Error(), "yaml:") || strings.Contains(err.Error(), "unmarshal") {
			return nil, NewFlowParseError(path, err)
		}
		return nil, err
	}
	return flow, nil
}
