package store

import (
	"cafeteria-api/apperr"
	"cafeteria-api/models"
)

// MenuItems returns every menu item in id order
func (t *Tx) MenuItems() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := t.db.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (t *Tx) MenuItem(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := t.db.First(&item, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrMenuItemNotFound, itoa(id), "menu item with ID %d not found", id)
		}
		return nil, err
	}
	return &item, nil
}

// MenuItemsByID resolves ids in one query; absent ids are simply missing from the map
func (t *Tx) MenuItemsByID(ids []uint) (map[uint]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) > 0 {
		if err := t.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return nil, err
		}
	}
	out := make(map[uint]models.MenuItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

func (t *Tx) CreateMenuItem(item *models.MenuItem) error {
	return t.db.Create(item).Error
}

func (t *Tx) SaveMenuItem(item *models.MenuItem) error {
	return t.db.Save(item).Error
}

func (t *Tx) DeleteMenuItem(id uint) error {
	res := t.db.Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.With(apperr.ErrMenuItemNotFound, itoa(id), "menu item with ID %d not found", id)
	}
	return nil
}

func (t *Tx) CountAvailableMenuItems() (int64, error) {
	var n int64
	err := t.db.Model(&models.MenuItem{}).Where("is_available = ?", true).Count(&n).Error
	return n, err
}
