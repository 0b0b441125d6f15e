package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"campusverse/internal/domain/activity"
	domain "campusverse/internal/domain/catalog"
)

//go:embed data/*.yaml
var seedFS embed.FS

type collectionFile struct {
	Kind        string       `yaml:"kind"`
	Title       string       `yaml:"title"`
	Subtitle    string       `yaml:"subtitle"`
	AllLabel    string       `yaml:"all_label"`
	DefaultSort string       `yaml:"default_sort"`
	Categories  []string     `yaml:"categories"`
	Items       []itemRecord `yaml:"items"`
}

type itemRecord struct {
	ID          int     `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Category    string  `yaml:"category"`
	Date        string  `yaml:"date"`
	Time        string  `yaml:"time"`
	Location    string  `yaml:"location"`
	Host        string  `yaml:"host"`
	Club        string  `yaml:"club"`
	Image       string  `yaml:"image"`
	Views       int     `yaml:"views"`
	Rating      float64 `yaml:"rating"`
	Attendance  int     `yaml:"attendance"`
}

type dashboardFile struct {
	Stats []struct {
		Label string `yaml:"label"`
		Value int    `yaml:"value"`
	} `yaml:"stats"`
	Feed []activityRecord `yaml:"feed"`
}

type activityRecord struct {
	Type      string        `yaml:"type"`
	Title     string        `yaml:"title"`
	By        string        `yaml:"by"`
	Name      string        `yaml:"name"`
	Batch     string        `yaml:"batch"`
	Age       time.Duration `yaml:"age"`
	Views     int           `yaml:"views"`
	Downloads int           `yaml:"downloads"`
	EventDate string        `yaml:"event_date"`
}

// YAMLStore implements Store over YAML seed files loaded once at startup.
type YAMLStore struct {
	collections map[domain.Kind]domain.Collection
	feed        []activity.Item
	stats       []domain.Stat
}

// NewEmbeddedStore loads the seed data compiled into the binary.
// Activity ages are anchored to now.
func NewEmbeddedStore(now time.Time) (*YAMLStore, error) {
	sub, err := fs.Sub(seedFS, "data")
	if err != nil {
		return nil, err
	}
	return NewYAMLStore(sub, now)
}

// NewYAMLStore loads <kind>.yaml for every collection kind plus dashboard.yaml from fsys.
// PRE: fsys contains one file per domain.Kinds entry and dashboard.yaml
// POST: every item has passed Validate; ids are unique per collection
func NewYAMLStore(fsys fs.FS, now time.Time) (*YAMLStore, error) {
	s := &YAMLStore{collections: make(map[domain.Kind]domain.Collection, len(domain.Kinds))}
	for _, kind := range domain.Kinds {
		c, err := loadCollection(fsys, kind)
		if err != nil {
			return nil, err
		}
		s.collections[kind] = c
	}
	if err := s.loadDashboard(fsys, now); err != nil {
		return nil, err
	}
	return s, nil
}

func loadCollection(fsys fs.FS, kind domain.Kind) (domain.Collection, error) {
	name := string(kind) + ".yaml"
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("read %s: %w", name, err)
	}
	var f collectionFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Collection{}, fmt.Errorf("parse %s: %w", name, err)
	}
	if domain.Kind(f.Kind) != kind {
		return domain.Collection{}, fmt.Errorf("%s: kind %q does not match file", name, f.Kind)
	}
	c := domain.Collection{
		Kind:        kind,
		Title:       f.Title,
		Subtitle:    f.Subtitle,
		AllLabel:    f.AllLabel,
		Categories:  f.Categories,
		DefaultSort: f.DefaultSort,
		Items:       make([]domain.Item, 0, len(f.Items)),
	}
	seen := make(map[int]bool, len(f.Items))
	for _, r := range f.Items {
		item, err := r.toItem(kind)
		if err != nil {
			return domain.Collection{}, fmt.Errorf("%s item %d: %w", name, r.ID, err)
		}
		if seen[item.ID] {
			return domain.Collection{}, fmt.Errorf("%s: duplicate id %d", name, item.ID)
		}
		if !slices.Contains(c.Categories, item.Category) {
			return domain.Collection{}, fmt.Errorf("%s item %d: category %q not declared", name, item.ID, item.Category)
		}
		seen[item.ID] = true
		c.Items = append(c.Items, item)
	}
	return c, nil
}

func (r itemRecord) toItem(kind domain.Kind) (domain.Item, error) {
	item := domain.Item{
		ID:          r.ID,
		Kind:        kind,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Time:        r.Time,
		Location:    r.Location,
		Host:        r.Host,
		Club:        r.Club,
		ImageRef:    r.Image,
		Metrics: domain.Metrics{
			Views:      r.Views,
			Rating:     r.Rating,
			Attendance: r.Attendance,
		},
	}
	if r.Date != "" {
		d, err := dateparse.ParseIn(r.Date, time.UTC)
		if err != nil {
			return domain.Item{}, fmt.Errorf("date %q: %w", r.Date, err)
		}
		item.Date = d
	}
	return item, item.Validate()
}

func (s *YAMLStore) loadDashboard(fsys fs.FS, now time.Time) error {
	raw, err := fs.ReadFile(fsys, "dashboard.yaml")
	if err != nil {
		return fmt.Errorf("read dashboard.yaml: %w", err)
	}
	var f dashboardFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse dashboard.yaml: %w", err)
	}
	for _, st := range f.Stats {
		s.stats = append(s.stats, domain.Stat{Label: st.Label, Value: st.Value})
	}
	for i, r := range f.Feed {
		item, err := r.toActivity(now)
		if err != nil {
			return fmt.Errorf("dashboard.yaml feed %d: %w", i, err)
		}
		s.feed = append(s.feed, item)
	}
	return nil
}

func (r activityRecord) toActivity(now time.Time) (activity.Item, error) {
	at := now.Add(-r.Age)
	switch r.Type {
	case activity.TypeResource:
		return activity.ResourceActivity{Title: r.Title, Author: r.By, At: at, Views: r.Views, Downloads: r.Downloads}, nil
	case activity.TypeEvent:
		ev := activity.EventActivity{Title: r.Title, Organizer: r.By, At: at}
		if r.EventDate != "" {
			d, err := dateparse.ParseIn(r.EventDate, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("event_date %q: %w", r.EventDate, err)
			}
			ev.EventDate = d
		}
		return ev, nil
	case activity.TypeStudent:
		return activity.StudentActivity{Name: r.Name, Batch: r.Batch, At: at}, nil
	}
	return nil, fmt.Errorf("%w: %q", activity.ErrUnknownType, r.Type)
}

// Collection returns the collection for kind.
// POST: returns domain.ErrUnknownKind if kind is not loaded
func (s *YAMLStore) Collection(_ context.Context, kind domain.Kind) (domain.Collection, error) {
	c, ok := s.collections[kind]
	if !ok {
		return domain.Collection{}, domain.ErrUnknownKind
	}
	c.Items = slices.Clone(c.Items)
	c.Categories = slices.Clone(c.Categories)
	return c, nil
}

// List returns a copy of the items of kind in seed order.
func (s *YAMLStore) List(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	c, err := s.Collection(ctx, kind)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}

// GetByID retrieves a single item.
// POST: returns domain.ErrNotFound if no item of kind has id
func (s *YAMLStore) GetByID(_ context.Context, kind domain.Kind, id int) (domain.Item, error) {
	c, ok := s.collections[kind]
	if !ok {
		return domain.Item{}, domain.ErrUnknownKind
	}
	for _, it := range c.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.Item{}, domain.ErrNotFound
}

// Categories returns the declared categories of kind, nil if unknown.
func (s *YAMLStore) Categories(kind domain.Kind) []string {
	return slices.Clone(s.collections[kind].Categories)
}

// Activity returns the home feed newest first.
func (s *YAMLStore) Activity(context.Context) ([]activity.Item, error) {
	return slices.Clone(s.feed), nil
}

// Stats returns the dashboard headline figures.
func (s *YAMLStore) Stats(context.Context) ([]domain.Stat, error) {
	return slices.Clone(s.stats), nil
}
