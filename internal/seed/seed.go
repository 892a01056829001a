// Package seed fills the stores with a demo catalog and test accounts so a
// fresh instance can be exercised without any setup.
package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/user"
)

// Demo credentials.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
	DemoPassword  = "password123"
)

// Demo loads the demo catalog and accounts. It is not idempotent and is
// meant for a freshly created store set.
func Demo(ctx context.Context, products catalog.Store, users user.Store) error {
	if err := seedAccounts(ctx, users); err != nil {
		return err
	}
	return seedCatalog(ctx, products)
}

func seedAccounts(ctx context.Context, users user.Store) error {
	type account struct {
		email     string
		password  string
		firstName string
		lastName  string
		address   string
		admin     bool
	}
	accounts := []account{
		{AdminEmail, AdminPassword, "Admin", "Administrateur", "1 Avenue de l'Administration, 75001 Paris", true},
		{"alice@example.com", DemoPassword, "Alice", "Martin", "12 Rue des Fleurs, 69001 Lyon", false},
		{"bob@example.com", DemoPassword, "Bob", "Durand", "34 Boulevard Victor Hugo, 31000 Toulouse", false},
		{"charlie@example.com", DemoPassword, "Charlie", "Dubois", "56 Avenue de la République, 13001 Marseille", false},
	}

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash demo password")
		}
		u := &user.User{
			ID:           uuid.New().String(),
			Email:        a.email,
			PasswordHash: hash,
			FirstName:    a.firstName,
			LastName:     a.lastName,
			Address:      a.address,
			Admin:        a.admin,
		}
		if err := users.Create(ctx, u); err != nil {
			return errors.Wrapf(err, "create account %s", a.email)
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, products catalog.Store) error {
	type item struct {
		name        string
		description string
		priceCents  int64
		stockQty    int
	}
	items := []item{
		{"T-Shirt Classic Blanc", "T-shirt en coton bio, coupe classique. Parfait pour un style décontracté et confortable.", 1999, 150},
		{"T-Shirt Classic Noir", "T-shirt en coton bio, coupe classique. Intemporel et polyvalent.", 1999, 120},
		{"Sweat à Capuche Gris", "Sweat en molleton doux avec capuche et poche kangourou. Idéal pour les journées fraîches.", 4999, 75},
		{"Jean Coupe Droite", "Jean en denim stretch confortable. Coupe droite intemporelle et polyvalente.", 6999, 60},
		{"Veste en Jean", "Veste en denim classique. Un essentiel du vestiaire décontracté.", 7999, 40},
		{"Casquette", "Casquette ajustable avec broderie. Protection solaire et style garantis.", 2499, 100},
		{"Ceinture Cuir Marron", "Ceinture en cuir véritable. Élégante et durable.", 3499, 45},
		{"Écharpe Laine", "Écharpe en laine mérinos. Douceur et chaleur pour l'hiver.", 2999, 35},
		{"Pull Col Roulé Beige", "Pull en cachemire mélangé. Doux et chaud pour l'hiver.", 7999, 5},
	}

	for _, it := range items {
		p := &catalog.Product{
			ID:          uuid.New().String(),
			Name:        it.name,
			Description: it.description,
			PriceCents:  it.priceCents,
			StockQty:    it.stockQty,
			Active:      true,
		}
		if err := products.Add(ctx, p); err != nil {
			return errors.Wrapf(err, "create product %s", it.name)
		}
	}
	return nil
}
