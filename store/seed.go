package store

import (
	"time"

	"cafeteria-api/models"
)

// DefaultUsers are installed by SeedDefaults. Both accounts share one password.
func DefaultUsers() []models.User {
	return []models.User{
		{Name: "Admin User", Email: "admin@cafe.com", Role: models.RoleAdmin, Department: "Management", Phone: "+1234567890", IsActive: true},
		{Name: "John Employee", Email: "john@cafe.com", Role: models.RoleEmployee, Department: "Engineering", Phone: "+1234567891", IsActive: true},
	}
}

func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			Name:                   "Classic Burger",
			Description:            "Juicy beef patty with lettuce, tomato, and our special sauce",
			Price:                  12.99,
			Category:               "Main Course",
			ImageURL:               "https://images.pexels.com/photos/1639557/pexels-photo-1639557.jpeg",
			IsAvailable:            true,
			PreparationTimeMinutes: 15,
			Ingredients:            []string{"beef patty", "lettuce", "tomato", "special sauce", "bun"},
		},
		{
			Name:                   "Margherita Pizza",
			Description:            "Fresh mozzarella, tomato sauce, and basil on crispy crust",
			Price:                  14.99,
			Category:               "Main Course",
			ImageURL:               "https://images.pexels.com/photos/315755/pexels-photo-315755.jpeg",
			IsAvailable:            true,
			PreparationTimeMinutes: 20,
			Ingredients:            []string{"mozzarella", "tomato sauce", "basil", "pizza dough"},
		},
		{
			Name:                   "Caesar Salad",
			Description:            "Crisp romaine lettuce with parmesan cheese and croutons",
			Price:                  8.99,
			Category:               "Salads",
			ImageURL:               "https://images.pexels.com/photos/1059905/pexels-photo-1059905.jpeg",
			IsAvailable:            true,
			PreparationTimeMinutes: 10,
			Ingredients:            []string{"romaine lettuce", "parmesan cheese", "croutons", "caesar dressing"},
		},
		{
			Name:                   "Fresh Coffee",
			Description:            "Freshly brewed coffee from premium beans",
			Price:                  3.99,
			Category:               "Beverages",
			ImageURL:               "https://images.pexels.com/photos/312418/pexels-photo-312418.jpeg",
			IsAvailable:            true,
			PreparationTimeMinutes: 5,
			Ingredients:            []string{"coffee beans", "water"},
		},
		{
			Name:                   "Chocolate Cake",
			Description:            "Rich chocolate cake with creamy frosting",
			Price:                  6.99,
			Category:               "Desserts",
			ImageURL:               "https://images.pexels.com/photos/291528/pexels-photo-291528.jpeg",
			IsAvailable:            true,
			PreparationTimeMinutes: 5,
			Ingredients:            []string{"chocolate", "flour", "eggs", "butter", "sugar"},
		},
	}
}

// SeedDefaults installs the default users and menu into an empty store.
// It reports false without touching anything when users already exist.
func (t *Tx) SeedDefaults(now time.Time, passwordHash string) (bool, error) {
	total, _, err := t.CountUsers()
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}

	for _, u := range DefaultUsers() {
		u.PasswordHash = passwordHash
		u.CreatedAt, u.UpdatedAt = now, now
		if err := t.CreateUser(&u); err != nil {
			return false, err
		}
	}
	for _, item := range DefaultMenu() {
		item.CreatedAt, item.UpdatedAt = now, now
		if err := t.CreateMenuItem(&item); err != nil {
			return false, err
		}
	}
	return true, nil
}
