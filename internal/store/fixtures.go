package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/textio"
	"gopkg.in/yaml.v3"
)

// Fixtures is seed data for local development and tests.
type Fixtures struct {
	Users             []FixtureUser       `yaml:"users"`
	Merchants         []FixtureMerchant   `yaml:"merchants"`
	Memberships       []FixtureMembership `yaml:"memberships"`
	Locations         []FixtureLocation   `yaml:"locations"`
	Allergens         []FixtureAllergen   `yaml:"allergens"`
	MenuItems         []FixtureMenuItem   `yaml:"menu_items"`
	MenuItemAllergens []FixtureLink       `yaml:"menu_item_allergens"`
}

type FixtureUser struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type FixtureMerchant struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type FixtureMembership struct {
	UserID     string `yaml:"user_id"`
	MerchantID string `yaml:"merchant_id"`
	Role       string `yaml:"role"`
	Status     string `yaml:"status"` // active unless set
}

type FixtureLocation struct {
	ID         string `yaml:"id"`
	MerchantID string `yaml:"merchant_id"`
	Name       string `yaml:"name"`
}

type FixtureAllergen struct {
	ID         string `yaml:"id"`
	LocationID string `yaml:"location_id"`
	Name       string `yaml:"name"`
}

type FixtureMenuItem struct {
	ID         string `yaml:"id"`
	LocationID string `yaml:"location_id"`
	Name       string `yaml:"name"`
}

type FixtureLink struct {
	MenuItemID string `yaml:"menu_item_id"`
	AllergenID string `yaml:"allergen_id"`
}

// DecodeFixtures reads a YAML fixture document.
func DecodeFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures
	if err := yaml.NewDecoder(textio.SkipBOM(r)).Decode(&f); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

// ReadFixtures decodes the fixture file at path.
func ReadFixtures(path string) (Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("open fixtures: %w", err)
	}
	defer file.Close()
	return DecodeFixtures(file)
}

// Statement is one parameterised insert produced from fixtures.
type Statement struct {
	SQL  string
	Args []any
}

// PlaceholderStyle selects how positional parameters are written.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1
)

// Statements flattens fixtures into inserts in dependency order. Rows that
// already exist are left untouched.
func (f Fixtures) Statements(style PlaceholderStyle) []Statement {
	var out []Statement
	add := func(query string, args ...any) {
		out = append(out, Statement{SQL: Rebind(style, query), Args: args})
	}

	for _, u := range f.Users {
		add(`INSERT INTO users (id, email, name) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, u.ID, u.Email, u.Name)
	}
	for _, m := range f.Merchants {
		add(`INSERT INTO merchants (id, name) VALUES (?, ?) ON CONFLICT DO NOTHING`, m.ID, m.Name)
	}
	for _, m := range f.Memberships {
		role, status := m.Role, m.Status
		if role == "" {
			role = "staff"
		}
		if status == "" {
			status = "active"
		}
		add(`INSERT INTO merchant_memberships (user_id, merchant_id, role, status) VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`,
			m.UserID, m.MerchantID, role, status)
	}
	for _, l := range f.Locations {
		add(`INSERT INTO locations (id, merchant_id, name) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, l.ID, l.MerchantID, l.Name)
	}
	for _, a := range f.Allergens {
		add(`INSERT INTO allergens (id, location_id, name) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, a.ID, a.LocationID, a.Name)
	}
	for _, m := range f.MenuItems {
		add(`INSERT INTO menu_items (id, location_id, name) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, m.ID, m.LocationID, m.Name)
	}
	for _, l := range f.MenuItemAllergens {
		add(`INSERT INTO menu_item_allergens (menu_item_id, allergen_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, l.MenuItemID, l.AllergenID)
	}
	return out
}

// Rebind rewrites ? placeholders for the given style.
func Rebind(style PlaceholderStyle, query string) string {
	if style == PlaceholderQuestion {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExecFunc runs one statement.
type ExecFunc func(ctx context.Context, query string, args ...any) error

// ApplyFixtures runs every fixture statement through exec, stopping at the
// first failure.
func ApplyFixtures(ctx context.Context, f Fixtures, style PlaceholderStyle, exec ExecFunc) error {
	for _, st := range f.Statements(style) {
		if err := exec(ctx, st.SQL, st.Args...); err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
	}
	return nil
}
