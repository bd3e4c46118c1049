package catalogsearch

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

const tagKey = "catalogsearch"

// Field roles recognized in `catalogsearch:"..."` struct tags.
const (
	roleID           = "id"
	roleName         = "name"
	roleSlug         = "slug"
	roleType         = "type"
	roleCategory     = "category"
	roleCategorySlug = "category_slug"
	roleBrand        = "brand"
	roleBrandSlug    = "brand_slug"
	roleDescription  = "description"
	roleThumbnail    = "thumbnail"
	rolePrice        = "price"
)

var textRoles = map[string]bool{
	roleName: true, roleSlug: true, roleType: true,
	roleCategory: true, roleCategorySlug: true,
	roleBrand: true, roleBrandSlug: true,
	roleDescription: true, roleThumbnail: true,
}

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type
	// Struct field index per role; roles without a field are absent.
	fields map[string]int
}

// parseSchema reflects on T and extracts catalogsearch struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("catalogsearch: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, fields: make(map[string]int)}
	for i := range t.NumField() {
		f := t.Field(i)
		role := f.Tag.Get(tagKey)
		if role == "" || role == "-" {
			continue
		}
		if err := meta.applyTag(i, f, role); err != nil {
			return nil, err
		}
	}

	if _, ok := meta.fields[roleID]; !ok {
		return nil, fmt.Errorf("catalogsearch: no field with `catalogsearch:\"id\"` tag in %s", t)
	}
	if _, ok := meta.fields[roleName]; !ok {
		return nil, fmt.Errorf("catalogsearch: no field with `catalogsearch:\"name\"` tag in %s", t)
	}
	return meta, nil
}

func (m *schemaMeta) applyTag(idx int, f reflect.StructField, role string) error {
	if _, dup := m.fields[role]; dup {
		return fmt.Errorf("catalogsearch: duplicate %s tag on field %s", role, f.Name)
	}

	kind := derefType(f.Type).Kind()
	switch {
	case role == roleID:
		if !isInt(f.Type.Kind()) {
			return fmt.Errorf("catalogsearch: id field %s must be an integer, got %s", f.Name, f.Type)
		}
	case role == rolePrice:
		if !isInt(kind) && kind != reflect.Float32 && kind != reflect.Float64 {
			return fmt.Errorf("catalogsearch: price field %s must be numeric, got %s", f.Name, f.Type)
		}
	case textRoles[role]:
		if kind != reflect.String {
			return fmt.Errorf("catalogsearch: %s field %s must be a string, got %s", role, f.Name, f.Type)
		}
	default:
		return fmt.Errorf("catalogsearch: unknown role %q on field %s", role, f.Name)
	}

	m.fields[role] = idx
	return nil
}

// toItem converts a tagged struct to a catalog Item. Nil pointers and empty
// category or brand names become absent fields.
func (m *schemaMeta) toItem(row any) (Item, error) {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return Item{}, fmt.Errorf("nil row")
		}
		v = v.Elem()
	}

	item := Item{
		ID:          v.Field(m.fields[roleID]).Int(),
		Name:        m.str(v, roleName),
		Slug:        m.str(v, roleSlug),
		Description: m.str(v, roleDescription),
		Thumbnail:   m.str(v, roleThumbnail),
		Type:        catalog.Product,
		Category:    m.ref(v, roleCategory, roleCategorySlug),
		Brand:       m.ref(v, roleBrand, roleBrandSlug),
	}
	if item.Slug == "" {
		item.Slug = Slugify(item.Name)
	}

	if raw := m.str(v, roleType); raw != "" {
		t, err := catalog.ParseItemType(raw)
		if err != nil {
			return Item{}, fmt.Errorf("item %d: %w", item.ID, err)
		}
		item.Type = t
	}

	if idx, ok := m.fields[rolePrice]; ok {
		if f, present := field(v, idx); present {
			p := toFloat64(f)
			item.Price = &p
		}
	}
	return item, nil
}

func (m *schemaMeta) str(v reflect.Value, role string) string {
	idx, ok := m.fields[role]
	if !ok {
		return ""
	}
	f, present := field(v, idx)
	if !present {
		return ""
	}
	return f.String()
}

func (m *schemaMeta) ref(v reflect.Value, nameRole, slugRole string) *Ref {
	name := m.str(v, nameRole)
	if name == "" {
		return nil
	}
	slug := m.str(v, slugRole)
	if slug == "" {
		slug = Slugify(name)
	}
	return &Ref{Name: name, Slug: slug}
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// field dereferences optional pointer fields; a nil pointer is not present.
func field(v reflect.Value, idx int) (reflect.Value, bool) {
	f := v.Field(idx)
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return reflect.Value{}, false
		}
		f = f.Elem()
	}
	return f, true
}

func derefType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	default:
		return 0
	}
}
