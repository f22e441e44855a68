package form

// AllMenus returns every menu in category order.
func (c Config) AllMenus() []Menu {
	var menus []Menu
	for _, cat := range c.MenuStructure.Categories {
		menus = append(menus, cat.Menus...)
	}
	return menus
}

// FindMenu returns the menu with the given id.
func (c Config) FindMenu(id string) (Menu, bool) {
	if id == "" {
		return Menu{}, false
	}
	for _, cat := range c.MenuStructure.Categories {
		for _, m := range cat.Menus {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Menu{}, false
}

// FindSubmenu returns the sub menu item id of menu m.
func (m Menu) FindSubmenu(id string) (SubMenuItem, bool) {
	for _, s := range m.SubMenuItems {
		if s.ID == id {
			return s, true
		}
	}
	return SubMenuItem{}, false
}

// FindOption returns the add-on option id of menu m.
func (m Menu) FindOption(id string) (Option, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Label returns the label of the choice with the given value.
func (s Selection) Label(value string) (string, bool) {
	for _, c := range s.Options {
		if c.Value == value {
			return c.Label, true
		}
	}
	return "", false
}

// Requires reports whether field is listed in the required fields.
func (r ValidationRules) Requires(field string) bool {
	for _, f := range r.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}
