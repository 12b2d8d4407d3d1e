package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"cafeteria-api/apperr"
	"cafeteria-api/models"
	"cafeteria-api/store"

	"github.com/xuri/excelize/v2"
)

// DefaultPreparationMinutes is used when the submitted preparation time is
// empty or not a number.
const DefaultPreparationMinutes = 15

// Text holds a form value that clients may send as a JSON string or number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// MenuItemInput is the admin menu form. Price and preparation time arrive as text.
type MenuItemInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           Text     `json:"price"`
	Category        string   `json:"category"`
	ImageURL        string   `json:"image_url"`
	IsAvailable     *bool    `json:"is_available"`
	PreparationTime Text     `json:"preparation_time"`
	Ingredients     []string `json:"ingredients"`
}

type menuFields struct {
	name, description, category, imageURL string
	price                                 float64
	prepMinutes                           int
	ingredients                           []string
}

func (in MenuItemInput) parse() (menuFields, error) {
	f := menuFields{
		name:        strings.TrimSpace(in.Name),
		description: strings.TrimSpace(in.Description),
		category:    strings.TrimSpace(in.Category),
		imageURL:    strings.TrimSpace(in.ImageURL),
		ingredients: cleanIngredients(in.Ingredients),
	}
	if f.name == "" {
		return f, apperr.Validation("name", "name is required")
	}
	if f.category == "" {
		return f, apperr.Validation("category", "category is required")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(string(in.Price)), 64)
	if err != nil {
		return f, apperr.Validation("price", "price must be a number")
	}
	if err := checkPrice(price); err != nil {
		return f, err
	}
	f.price = roundCents(price)

	f.prepMinutes, err = parsePrepTime(string(in.PreparationTime))
	if err != nil {
		return f, err
	}
	return f, nil
}

// checkPrice rejects zero, negative and non-finite prices
func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return apperr.Validation("price", "price must be a finite number")
	}
	if price <= 0 {
		return apperr.Validation("price", "price must be greater than 0")
	}
	return nil
}

var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

// parsePrepTime keeps the legacy form behaviour: the leading integer is used
// ("20 min" is 20, "12.5" is 12), input without one falls back to
// DefaultPreparationMinutes, and a parsed value must still be positive.
func parsePrepTime(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(leadingInt.FindString(raw)))
	if err != nil {
		return DefaultPreparationMinutes, nil
	}
	if n <= 0 {
		return 0, apperr.Validation("preparation_time", "preparation time must be greater than 0")
	}
	return n, nil
}

func cleanIngredients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f menuFields) apply(item *models.MenuItem) {
	item.Name = f.name
	item.Description = f.description
	item.Category = f.category
	item.ImageURL = f.imageURL
	item.Price = f.price
	item.PreparationTimeMinutes = f.prepMinutes
	item.Ingredients = f.ingredients
}

type CatalogService struct {
	deps Deps
}

func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{deps: deps.withDefaults()}
}

func (s *CatalogService) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.MenuItems()
		return err
	})
	return items, err
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		item, err = tx.MenuItem(id)
		return err
	})
	return item, err
}

// Create adds a menu item; it is available unless the input says otherwise
func (s *CatalogService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	now := s.deps.Now()
	item := &models.MenuItem{IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	f.apply(item)
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		return tx.CreateMenuItem(item)
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Infof("menu item %d %q created", item.ID, item.Name)
	return item, nil
}

// Update replaces the editable fields of an item. Existing orders keep their snapshots.
func (s *CatalogService) Update(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	var item *models.MenuItem
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		var err error
		if item, err = tx.MenuItem(id); err != nil {
			return err
		}
		f.apply(item)
		if in.IsAvailable != nil {
			item.IsAvailable = *in.IsAvailable
		}
		item.UpdatedAt = s.deps.Now()
		return tx.SaveMenuItem(item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		return tx.DeleteMenuItem(id)
	})
	if err == nil {
		s.deps.Log.Infof("menu item %d deleted", id)
	}
	return err
}

func (s *CatalogService) ToggleAvailability(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item *models.MenuItem
	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		var err error
		if item, err = tx.MenuItem(id); err != nil {
			return err
		}
		item.IsAvailable = !item.IsAvailable
		item.UpdatedAt = s.deps.Now()
		return tx.SaveMenuItem(item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ByCategory groups available items. Categories appear in the order they are
// first met when walking items by id.
func (s *CatalogService) ByCategory(ctx context.Context) ([]models.MenuCategory, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	groups := []models.MenuCategory{}
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, models.MenuCategory{Name: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups, nil
}

// ── Spreadsheet import ──────────────────────────────────────────────────────

// ImportXLSX creates one item per row of the first sheet. Columns: name,
// description, price, category, preparation_time, ingredients (comma
// separated), available. The header row and blank rows are skipped; any bad
// row rejects the whole file.
func (s *CatalogService) ImportXLSX(ctx context.Context, r io.Reader) ([]models.MenuItem, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("file", "invalid Excel file")
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("file", "workbook has no sheets")
	}
	rows, err := xlsx.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	now := s.deps.Now()
	var items []models.MenuItem
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		in := MenuItemInput{
			Name:            cell(row, 0),
			Description:     cell(row, 1),
			Price:           Text(cell(row, 2)),
			Category:        cell(row, 3),
			PreparationTime: Text(cell(row, 4)),
			Ingredients:     strings.Split(cell(row, 5), ","),
		}
		if avail := strings.ToLower(cell(row, 6)); avail != "" {
			on := avail == "true" || avail == "yes" || avail == "1"
			in.IsAvailable = &on
		}

		f, err := in.parse()
		if err != nil {
			ae, ok := err.(*apperr.Error)
			if !ok {
				return nil, err
			}
			return nil, apperr.Validation(ae.Subject, "row %d: %s", i+1, ae.Message)
		}
		item := models.MenuItem{IsAvailable: true, CreatedAt: now, UpdatedAt: now}
		f.apply(&item)
		if in.IsAvailable != nil {
			item.IsAvailable = *in.IsAvailable
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, apperr.Validation("file", "no menu items found in sheet %s", sheets[0])
	}

	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		for i := range items {
			if err := tx.CreateMenuItem(&items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Infof("imported %d menu item(s) from spreadsheet", len(items))
	return items, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
