package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type fileQuestion struct {
	ID     string            `koanf:"id"`
	Text   string            `koanf:"text"`
	Scale  int               `koanf:"scale"`
	Levels map[string]string `koanf:"levels"`
}

type fileCompetency struct {
	ID        string         `koanf:"id"`
	Name      string         `koanf:"name"`
	Questions []fileQuestion `koanf:"questions"`
}

type fileCatalog struct {
	Competencies []fileCompetency   `koanf:"competencies"`
	Benchmark    map[string]float64 `koanf:"benchmark"`
}

// Load reads a YAML catalog from path and validates it.
// An empty path returns Default().
func Load(_ context.Context, path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}

	var raw fileCatalog
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}

	comps := make([]Competency, 0, len(raw.Competencies))
	for _, rc := range raw.Competencies {
		comp := Competency{ID: rc.ID, Name: rc.Name, Questions: make([]Question, 0, len(rc.Questions))}
		for _, rq := range rc.Questions {
			q := Question{ID: rq.ID, Text: rq.Text, Scale: Scale(rq.Scale)}
			if len(rq.Levels) > 0 {
				q.Levels = make(map[int]string, len(rq.Levels))
				for key, text := range rq.Levels {
					level, err := strconv.Atoi(key)
					if err != nil {
						return nil, fmt.Errorf("%w: question %s level %q", ErrInvalidLevel, rq.ID, key)
					}
					q.Levels[level] = text
				}
			}
			comp.Questions = append(comp.Questions, q)
		}
		comps = append(comps, comp)
	}

	bench := BenchmarkProfile{}
	for id, v := range raw.Benchmark {
		bench[id] = v
	}

	cat := New(comps, bench)
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
