package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/domain"
	"github.com/Shahid-Khan2140/Good-Grounds-Coffee-Shop/internal/storage"
)

// AllCategories is the pseudo category that selects every product.
const AllCategories = "All"

var ErrProductNotFound = errors.New("product not found")

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, category, query string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Close() error
	RunMigrations() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	return storage.RunMigrations(r.db, storage.DialectSQLite, migrationsFS, "migrations", "catalog_schema_migrations")
}

const selectProducts = `
	SELECT id, name, description, price, image_url, category, featured, customizable, created_at
	FROM products`

func (r *Repository) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, selectProducts+` ORDER BY CAST(id AS INTEGER), id`)
}

// GetProductsByCategory treats "" and AllCategories as no filter.
func (r *Repository) GetProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	if category == "" || category == AllCategories {
		return r.GetAllProducts(ctx)
	}
	return r.queryProducts(ctx, selectProducts+` WHERE category = ? ORDER BY CAST(id AS INTEGER), id`, category)
}

// SearchProducts matches query case-insensitively against name or description
// within category. A blank query behaves like GetProductsByCategory.
func (r *Repository) SearchProducts(ctx context.Context, category, query string) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.GetProductsByCategory(ctx, category)
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	where := ` WHERE (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
	args := []any{pattern, pattern}
	if category != "" && category != AllCategories {
		where += ` AND category = ?`
		args = append(args, category)
	}
	return r.queryProducts(ctx, selectProducts+where+` ORDER BY CAST(id AS INTEGER), id`, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repository) GetFeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.queryProducts(ctx, selectProducts+` WHERE featured = 1 ORDER BY CAST(id AS INTEGER), id`)
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	products, err := r.queryProducts(ctx, selectProducts+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return products[0], nil
}

// Categories lists AllCategories first, then the stored categories in menu order.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{AllCategories}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.Category,
			&p.Featured,
			&p.Customizable,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
