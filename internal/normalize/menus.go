package normalize

import (
	"fmt"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// idSet hands out unique identifiers, suffixing repeats with -2, -3, ...
type idSet map[string]bool

func (s idSet) claim(id string) string {
	unique := id
	for n := 2; s[unique]; n++ {
		unique = fmt.Sprintf("%s-%d", id, n)
	}
	s[unique] = true
	return unique
}

// categories accepts a list of category objects. A flat-shape menu list is
// wrapped into a single default category.
func categories(c candidate) ([]form.Category, bool) {
	list, ok := asList(c.value)
	if !ok {
		return nil, false
	}
	if c.source == SourceFlat {
		list = []any{map[string]any{"menus": list}}
	}

	catIDs := idSet{}
	menuIDs := idSet{}
	out := make([]form.Category, 0, len(list))
	for i, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		out = append(out, category(m, i, catIDs, menuIDs))
	}
	return out, true
}

func category(m map[string]any, index int, catIDs, menuIDs idSet) form.Category {
	id, ok := stringField(m, "id", "category_id")
	if !ok || id == "" {
		id = fmt.Sprintf("category-%d", index+1)
	}
	id = catIDs.claim(id)

	label, ok := stringField(m, "label", "name")
	if !ok || label == "" {
		label = form.DefaultCategoryLabel
	}

	cat := form.Category{ID: id, Label: label, Menus: []form.Menu{}}
	raw, _ := field(m, "menus")
	list, _ := asList(raw)
	for j, item := range list {
		mm, ok := asMap(item)
		if !ok {
			continue
		}
		cat.Menus = append(cat.Menus, menu(mm, fmt.Sprintf("%s-menu-%d", id, j+1), menuIDs))
	}
	return cat
}

// menu resolves one menu. Sub items and options are mutually exclusive:
// has_submenu (or, when absent, the presence of sub items) decides which
// list survives.
func menu(m map[string]any, fallbackID string, menuIDs idSet) form.Menu {
	id, ok := stringField(m, "id", "menu_id")
	if !ok || id == "" {
		id = fallbackID
	}
	id = menuIDs.claim(id)

	out := form.Menu{
		ID:           id,
		SubMenuItems: []form.SubMenuItem{},
		Options:      []form.Option{},
	}
	out.Name, _ = stringField(m, "name", "title")
	out.Description, _ = stringField(m, "description")
	out.Price, _ = intField(m, 0, "price")
	out.Duration, _ = intField(m, 0, "duration", "duration_minutes")

	subs := subMenuItems(m, id)
	hasSubmenu, explicit := boolField(m, "has_submenu")
	if !explicit {
		hasSubmenu = len(subs) > 0
	}
	out.HasSubmenu = hasSubmenu
	if hasSubmenu {
		out.SubMenuItems = subs
	} else {
		out.Options = options(m, id)
	}
	return out
}

func subMenuItems(m map[string]any, menuID string) []form.SubMenuItem {
	raw, _ := field(m, "sub_menu_items", "submenus")
	list, _ := asList(raw)
	ids := idSet{}
	out := []form.SubMenuItem{}
	for k, item := range list {
		sm, ok := asMap(item)
		if !ok {
			continue
		}
		id, ok := stringField(sm, "id", "submenu_id")
		if !ok || id == "" {
			id = fmt.Sprintf("%s-sub-%d", menuID, k+1)
		}
		sub := form.SubMenuItem{ID: ids.claim(id)}
		sub.Name, _ = stringField(sm, "name", "title")
		sub.Description, _ = stringField(sm, "description")
		sub.Price, _ = intField(sm, 0, "price")
		sub.Duration, _ = intField(sm, 0, "duration", "duration_minutes")
		out = append(out, sub)
	}
	return out
}

func options(m map[string]any, menuID string) []form.Option {
	raw, _ := field(m, "options")
	list, _ := asList(raw)
	ids := idSet{}
	out := []form.Option{}
	for k, item := range list {
		om, ok := asMap(item)
		if !ok {
			continue
		}
		id, ok := stringField(om, "id", "option_id")
		if !ok || id == "" {
			id = fmt.Sprintf("%s-opt-%d", menuID, k+1)
		}
		opt := form.Option{ID: ids.claim(id)}
		opt.Name, _ = stringField(om, "name", "title")
		opt.Price, _ = intField(om, 0, "price")
		opt.Duration, _ = intField(om, 0, "duration", "duration_minutes")
		opt.IsDefault, _ = boolField(om, "is_default", "default")
		out = append(out, opt)
	}
	return out
}
