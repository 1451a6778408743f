// Package seed imports catalog fixtures from YAML and bootstraps the first
// admin account.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// ErrEmptyFixture is returned when a fixture contains no document.
var ErrEmptyFixture = errors.New("fixture is empty")

// =============================================================================
// Fixture Types
// =============================================================================

// Fixture is the root of a seed file.
type Fixture struct {
	Categories  []CategoryFixture   `yaml:"categories"`
	Backgrounds []BackgroundFixture `yaml:"backgrounds"`
}

// CategoryFixture describes a category with its children.
type CategoryFixture struct {
	Name          string               `yaml:"name"`
	Slug          string               `yaml:"slug"`
	Description   string               `yaml:"description"`
	Info          *InfoFixture         `yaml:"info"`
	SubCategories []SubCategoryFixture `yaml:"sub_categories"`
	Groups        []GroupFixture       `yaml:"groups"`
}

// InfoFixture is a category info block.
type InfoFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// SubCategoryFixture is a sub-category.
type SubCategoryFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// GroupFixture is a field group with its fields.
type GroupFixture struct {
	Name   string         `yaml:"name"`
	Fields []FieldFixture `yaml:"fields"`
}

// FieldFixture is a field definition. Type defaults to text.
type FieldFixture struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Options    []string `yaml:"options"`
	Unit       string   `yaml:"unit"`
	Required   bool     `yaml:"required"`
	Filterable bool     `yaml:"filterable"`
}

// BackgroundFixture is a content block. Blocks are matched on section and
// title when re-importing.
type BackgroundFixture struct {
	Section     string `yaml:"section"`
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Active      *bool  `yaml:"active"`
}

// Result summarizes an import.
type Result struct {
	Categories         int
	SkippedCategories  int
	SubCategories      int
	Groups             int
	Fields             int
	Backgrounds        int
	SkippedBackgrounds int
}

// =============================================================================
// Import
// =============================================================================

// Parse decodes a fixture. Unknown keys are rejected so typos surface.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFixture
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Import loads a fixture into s. Categories whose slug already exists are
// skipped, so a fixture can be imported repeatedly. Each category is written
// with its children in one transaction.
func Import(ctx context.Context, s store.Store, r io.Reader, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seed")

	var res Result
	fixture, err := Parse(r)
	if err != nil {
		return res, err
	}

	for i, cf := range fixture.Categories {
		category, err := domain.NewCategory(cf.Name, cf.Slug, cf.Description)
		if err != nil {
			return res, fmt.Errorf("category %d (%q): %w", i+1, cf.Name, err)
		}

		if _, err := s.GetCategoryBySlug(ctx, category.Slug); err == nil {
			logger.Info("category exists, skipping", "slug", category.Slug)
			res.SkippedCategories++
			continue
		} else if !store.IsNotFound(err) {
			return res, err
		}

		var counts Result
		err = s.WithTx(ctx, func(tx store.Store) error {
			var err error
			counts, err = importCategory(ctx, tx, category, cf)
			return err
		})
		if err != nil {
			return res, fmt.Errorf("category %q: %w", category.Slug, err)
		}

		res.Categories++
		res.SubCategories += counts.SubCategories
		res.Groups += counts.Groups
		res.Fields += counts.Fields
		logger.Info("category imported",
			"slug", category.Slug,
			"sub_categories", counts.SubCategories,
			"groups", counts.Groups,
			"fields", counts.Fields,
		)
	}

	if err := importBackgrounds(ctx, s, fixture.Backgrounds, &res); err != nil {
		return res, err
	}

	return res, nil
}

func importCategory(ctx context.Context, tx store.Store, category *domain.Category, cf CategoryFixture) (Result, error) {
	var res Result
	if err := tx.CreateCategory(ctx, category, nil); err != nil {
		return res, err
	}

	if cf.Info != nil {
		info, err := domain.NewCategoryInfo(category.ID, cf.Info.Title, cf.Info.Description)
		if err != nil {
			return res, fmt.Errorf("info: %w", err)
		}
		if err := tx.UpsertCategoryInfo(ctx, info, nil); err != nil {
			return res, err
		}
	}

	for _, sf := range cf.SubCategories {
		sub, err := domain.NewSubCategory(category.ID, sf.Name, sf.Slug, sf.Description)
		if err != nil {
			return res, fmt.Errorf("sub-category %q: %w", sf.Name, err)
		}
		if err := tx.CreateSubCategory(ctx, sub); err != nil {
			return res, err
		}
		res.SubCategories++
	}

	for _, gf := range cf.Groups {
		group, err := domain.NewGroup(category.ID, gf.Name)
		if err != nil {
			return res, fmt.Errorf("group %q: %w", gf.Name, err)
		}
		if err := tx.CreateGroup(ctx, group); err != nil {
			return res, err
		}
		res.Groups++

		for _, ff := range gf.Fields {
			fieldType := domain.FieldType(ff.Type)
			if fieldType == "" {
				fieldType = domain.FieldText
			}
			field, err := domain.NewField(group.ID, domain.FieldSpec{
				Name:       ff.Name,
				Type:       fieldType,
				Options:    ff.Options,
				Unit:       ff.Unit,
				Required:   ff.Required,
				Filterable: ff.Filterable,
			})
			if err != nil {
				return res, fmt.Errorf("field %q in group %q: %w", ff.Name, gf.Name, err)
			}
			if err := tx.CreateField(ctx, field); err != nil {
				return res, err
			}
			res.Fields++
		}
	}

	return res, nil
}

func importBackgrounds(ctx context.Context, s store.Store, fixtures []BackgroundFixture, res *Result) error {
	loaded := make(map[string]bool)
	existing := make(map[string]bool)
	for i, bf := range fixtures {
		active := true
		if bf.Active != nil {
			active = *bf.Active
		}
		bg, err := domain.NewBackground(domain.BackgroundSpec{
			Section:     bf.Section,
			Title:       bf.Title,
			Subtitle:    bf.Subtitle,
			Description: bf.Description,
			Active:      active,
		})
		if err != nil {
			return fmt.Errorf("background %d (%q): %w", i+1, bf.Title, err)
		}

		if !loaded[bg.Section] {
			current, err := s.ListBackgrounds(ctx, store.BackgroundFilter{Section: bg.Section})
			if err != nil {
				return err
			}
			loaded[bg.Section] = true
			for _, c := range current {
				existing[c.Section+"\x00"+c.Title] = true
			}
		}
		key := bg.Section + "\x00" + bg.Title
		if existing[key] {
			res.SkippedBackgrounds++
			continue
		}

		if err := s.CreateBackground(ctx, bg); err != nil {
			return fmt.Errorf("background %q: %w", bg.Title, err)
		}
		existing[key] = true
		res.Backgrounds++
	}
	return nil
}

// =============================================================================
// Bootstrap Admin
// =============================================================================

// EnsureAdmin creates the bootstrap admin when no admin exists yet. It
// reports whether an admin was created. An empty email is a no-op.
func EnsureAdmin(ctx context.Context, s store.Store, email, password, name string) (bool, error) {
	if email == "" {
		return false, nil
	}

	n, err := s.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin password: %w", err)
	}
	admin, err := domain.NewAdmin(email, name, hash)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
