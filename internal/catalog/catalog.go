package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fatimatanveer/ethical-hackers-journey/internal/model"
)

//go:embed missions/*.yaml
var embedded embed.FS

// IndexFile fixes catalog order inside a mission directory.
const IndexFile = "index.yaml"

// index is the shape of IndexFile.
type index struct {
	Missions []string `yaml:"missions"`
}

// Catalog is the read-only set of mission templates.
// Every accessor returns copies; the catalog itself is never mutated.
type Catalog struct {
	missions []MissionTemplate
}

// New builds a catalog from templates after running Validate.
func New(templates []MissionTemplate) (*Catalog, error) {
	if errs := Validate(templates); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	c := &Catalog{missions: make([]MissionTemplate, len(templates))}
	for i, t := range templates {
		c.missions[i] = t.clone()
	}
	return c, nil
}

// Default returns the embedded catalog of built-in missions.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "missions")
	if err != nil {
		return nil, fmt.Errorf("open embedded missions: %w", err)
	}
	return Load(sub)
}

// LoadDir loads a catalog from a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open catalog dir: %s is not a directory", dir)
	}
	return Load(os.DirFS(dir))
}

// Load reads mission files from fsys.
// Order follows IndexFile when present, otherwise file name order.
// Each file is checked against the schema and decoded strictly.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := missionFiles(fsys)
	if err != nil {
		return nil, err
	}

	var (
		templates []MissionTemplate
		verrs     []ValidationError
	)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read mission file %s: %w", name, err)
		}
		if errs := CheckSchema(name, data); len(errs) > 0 {
			verrs = append(verrs, errs...)
			continue
		}
		t, err := decodeMission(data)
		if err != nil {
			return nil, fmt.Errorf("parse mission file %s: %w", name, err)
		}
		if want := strings.TrimSuffix(name, path.Ext(name)); t.ID != want {
			verrs = append(verrs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("mission id %q does not match file name", t.ID),
				Code:    ErrMissionFileName,
			})
		}
		templates = append(templates, t)
	}
	if len(verrs) > 0 {
		return nil, ValidationErrors(verrs)
	}
	return New(templates)
}

func missionFiles(fsys fs.FS) ([]string, error) {
	data, err := fs.ReadFile(fsys, IndexFile)
	if errors.Is(err, fs.ErrNotExist) {
		names, err := fs.Glob(fsys, "*.yaml")
		if err != nil {
			return nil, fmt.Errorf("list mission files: %w", err)
		}
		sort.Strings(names)
		return names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IndexFile, err)
	}

	var idx index
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&idx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", IndexFile, err)
	}
	if len(idx.Missions) == 0 {
		return nil, fmt.Errorf("%s lists no missions", IndexFile)
	}
	names := make([]string, len(idx.Missions))
	for i, id := range idx.Missions {
		names[i] = id + ".yaml"
	}
	return names, nil
}

func decodeMission(data []byte) (MissionTemplate, error) {
	var t MissionTemplate
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&t); err != nil {
		return MissionTemplate{}, err
	}
	return t, nil
}

// Missions returns copies of every template in catalog order.
func (c *Catalog) Missions() []MissionTemplate {
	out := make([]MissionTemplate, len(c.missions))
	for i, t := range c.missions {
		out[i] = t.clone()
	}
	return out
}

// Mission returns a copy of the template with the given id.
func (c *Catalog) Mission(id string) (MissionTemplate, bool) {
	for _, t := range c.missions {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return MissionTemplate{}, false
}

// ByRole returns the templates for one team, in catalog order.
func (c *Catalog) ByRole(role model.Role) []MissionTemplate {
	return c.filter(func(t *MissionTemplate) bool { return t.Role == role })
}

// ByDifficulty returns the templates at one difficulty, in catalog order.
func (c *Catalog) ByDifficulty(d model.Difficulty) []MissionTemplate {
	return c.filter(func(t *MissionTemplate) bool { return t.Difficulty == d })
}

func (c *Catalog) filter(keep func(*MissionTemplate) bool) []MissionTemplate {
	out := []MissionTemplate{}
	for i := range c.missions {
		if keep(&c.missions[i]) {
			out = append(out, c.missions[i].clone())
		}
	}
	return out
}

// Len returns the number of missions.
func (c *Catalog) Len() int {
	return len(c.missions)
}

// Instantiate returns a fresh mutable roster for one play-through.
func (c *Catalog) Instantiate() []model.Mission {
	out := make([]model.Mission, len(c.missions))
	for i, t := range c.missions {
		out[i] = t.Instance()
	}
	return out
}
