package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"fastrecycle-hq/salvage/pkg/amount"
	"fastrecycle-hq/salvage/pkg/classify"
	"fastrecycle-hq/salvage/pkg/recycle"
	"fastrecycle-hq/salvage/pkg/rules"
)

// ErrInsufficient is returned when a removal asks for more than is held.
var ErrInsufficient = errors.New("not enough items")

// KindContainer is the only target kind that holds items.
const KindContainer = "container"

type containerFile struct {
	Name  string       `yaml:"name"`
	Kind  string       `yaml:"kind,omitempty"`
	Items []itemRecord `yaml:"items"`
}

type itemRecord struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name,omitempty"`
	Quantity  int64         `yaml:"quantity"`
	Weight    amount.Amount `yaml:"weight"`
	Category  string        `yaml:"category,omitempty"`
	Playable  *bool         `yaml:"playable,omitempty"`
	Enchanted bool          `yaml:"enchanted,omitempty"`
	Keywords  []string      `yaml:"keywords,omitempty"`
}

// Reference is a target that is not a container.
type Reference struct {
	name string
	kind string
}

// Name implements recycle.Target.
func (r *Reference) Name() string { return r.name }

// Kind returns the declared target kind.
func (r *Reference) Kind() string { return r.kind }

// File is a container persisted as a YAML document. Mutations stay in memory
// until Commit rewrites the file.
type File struct {
	*Memory
	path string
}

// Open reads the target file at path. Keywords that are entity identifiers
// are named through catalog, which may be nil. A file whose kind is anything
// other than "container" yields a *Reference.
func Open(path string, catalog *Catalog) (recycle.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target: %w", err)
	}

	var f containerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse target %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if f.Kind != "" && !strings.EqualFold(f.Kind, KindContainer) {
		return &Reference{name: f.Name, kind: f.Kind}, nil
	}

	items := make([]classify.Item, 0, len(f.Items))
	for i, rec := range f.Items {
		item, err := rec.toItem(catalog)
		if err != nil {
			return nil, fmt.Errorf("target %s: item %d: %w", path, i, err)
		}
		items = append(items, item)
	}

	return &File{Memory: NewMemory(f.Name, items...), path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Commit implements recycle.Committer. The file is replaced atomically.
func (f *File) Commit(ctx context.Context) error {
	doc := containerFile{Name: f.Name(), Kind: KindContainer}
	for _, it := range f.Items() {
		doc.Items = append(doc.Items, fromItem(it))
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".salvage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write target: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write target: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace target: %w", err)
	}
	return nil
}

func (rec itemRecord) toItem(catalog *Catalog) (classify.Item, error) {
	if rec.ID == "" {
		return classify.Item{}, fmt.Errorf("missing id")
	}
	if rec.Quantity < 0 {
		return classify.Item{}, fmt.Errorf("%s: negative quantity %d", rec.ID, rec.Quantity)
	}
	category, err := classify.ParseCategory(rec.Category)
	if err != nil {
		return classify.Item{}, fmt.Errorf("%s: %w", rec.ID, err)
	}

	item := classify.Item{
		ID:         rules.CanonicalID(rec.ID),
		Name:       rec.Name,
		Quantity:   rec.Quantity,
		UnitWeight: rec.Weight,
		Category:   category,
		Playable:   rec.Playable == nil || *rec.Playable,
		Special:    rec.Enchanted,
	}
	for _, kw := range rec.Keywords {
		item.Tags = append(item.Tags, keywordTag(kw, catalog))
	}
	return item, nil
}

// keywordTag turns a keyword entry into a tag. An entity identifier is named
// through the catalog, falling back to its canonical spelling; anything else
// is the tag text itself.
func keywordTag(kw string, catalog *Catalog) classify.Tag {
	if _, ok := rules.ParseEntityID(kw); !ok {
		return classify.Tag{Text: kw}
	}
	id := rules.CanonicalID(kw)
	if h, ok := catalog.Resolve(id); ok && h.DisplayName() != "" {
		return classify.Tag{ID: id, Text: h.DisplayName()}
	}
	return classify.Tag{ID: id, Text: id}
}

func fromItem(it classify.Item) itemRecord {
	playable := it.Playable
	rec := itemRecord{
		ID:        it.ID,
		Name:      it.Name,
		Quantity:  it.Quantity,
		Weight:    it.UnitWeight,
		Category:  it.Category.String(),
		Playable:  &playable,
		Enchanted: it.Special,
	}
	for _, tag := range it.Tags {
		if tag.ID != "" {
			rec.Keywords = append(rec.Keywords, tag.ID)
			continue
		}
		rec.Keywords = append(rec.Keywords, tag.Text)
	}
	return rec
}
