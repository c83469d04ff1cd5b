package livemap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/datasource"
	"gopkg.in/yaml.v3"
)

const (
	SourceTypeHTTP   = "http"
	SourceTypeGTFSRT = "gtfs-rt"
)

// ScreenDefinition parameterises one live map engine, one per role screen
type ScreenDefinition struct {
	Identifier   string           `yaml:"identifier" validate:"required"`
	Name         string           `yaml:"name"`
	Role         string           `yaml:"role" validate:"required,oneof=superadmin admin dealer client"`
	Source       SourceDefinition `yaml:"source"`
	PollInterval time.Duration    `yaml:"pollInterval" validate:"omitempty,min=500ms"`
	DefaultZoom  float64          `yaml:"defaultZoom" validate:"omitempty,min=1,max=22"`
	Filter       string           `yaml:"filter"`
}

type SourceDefinition struct {
	Type string `yaml:"type" validate:"required,oneof=http gtfs-rt"`
	URL  string `yaml:"url" validate:"required,url"`
}

// LiveSource builds the data source the screen polls
func (s ScreenDefinition) LiveSource() datasource.LiveSource {
	switch s.Source.Type {
	case SourceTypeGTFSRT:
		return datasource.NewGTFSRTSource(s.Source.URL)
	default:
		return datasource.NewHTTPClient(s.Source.URL)
	}
}

// LoadScreens reads every screen definition from the yaml files under directory.
// A file may hold several documents.
func LoadScreens(directory string) ([]ScreenDefinition, error) {
	var screens []ScreenDefinition
	seen := map[string]bool{}

	validate := validator.New()

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() {
				return nil
			}

			extension := filepath.Ext(path)
			if extension != ".yaml" && extension != ".yml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading screens file")

			screensYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(screensYaml))

			for {
				var screen ScreenDefinition
				if err := decoder.Decode(&screen); err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return fmt.Errorf("%s: %w", path, err)
				}

				if err := validate.Struct(screen); err != nil {
					return fmt.Errorf("%s: screen %q: %w", path, screen.Identifier, err)
				}

				if seen[screen.Identifier] {
					return fmt.Errorf("%s: duplicate screen %q", path, screen.Identifier)
				}
				seen[screen.Identifier] = true

				screens = append(screens, screen)
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return screens, nil
}

func FindScreen(screens []ScreenDefinition, identifier string) (ScreenDefinition, bool) {
	for _, screen := range screens {
		if screen.Identifier == identifier {
			return screen, true
		}
	}
	return ScreenDefinition{}, false
}
