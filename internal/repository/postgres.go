package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// PostgresCatalogRepository implements CatalogRepository over the
// shared catalog schema (dishes, dish_supplements).
type PostgresCatalogRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresCatalogRepository(db *sql.DB, logger *logging.Logger) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db, logger: logger}
}

// GetDishes returns active catalog entries for the given dish IDs,
// each with its offered supplements. Inactive dishes are omitted.
func (r *PostgresCatalogRepository) GetDishes(ctx context.Context, ids []string) ([]models.DishCatalogEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT d.id, d.name, d.price, d.is_promotion_active, d.promotion_price,
		       COALESCE(json_agg(json_build_object(
		           'id', s.id,
		           'name', s.name,
		           'unit_price', s.unit_price,
		           'category', s.category,
		           'available', s.available
		       )) FILTER (WHERE s.id IS NOT NULL), '[]')
		FROM dishes d
		LEFT JOIN dish_supplements ds ON ds.dish_id = d.id
		LEFT JOIN supplements s ON s.id = ds.supplement_id
		WHERE d.id = ANY($1) AND d.active = TRUE
		GROUP BY d.id, d.name, d.price, d.is_promotion_active, d.promotion_price
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to fetch dishes", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	var entries []models.DishCatalogEntry
	for rows.Next() {
		var entry models.DishCatalogEntry
		var promotionPrice sql.NullInt64
		var supplementsJSON []byte

		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Price, &entry.IsPromotionActive, &promotionPrice, &supplementsJSON); err != nil {
			return nil, err
		}
		if promotionPrice.Valid {
			v := promotionPrice.Int64
			entry.PromotionPrice = &v
		}
		if err := json.Unmarshal(supplementsJSON, &entry.Supplements); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// PostgresRestaurantDirectory implements RestaurantDirectory over the
// restaurants and restaurant_dishes tables.
type PostgresRestaurantDirectory struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresRestaurantDirectory(db *sql.DB, logger *logging.Logger) *PostgresRestaurantDirectory {
	return &PostgresRestaurantDirectory{db: db, logger: logger}
}

func (r *PostgresRestaurantDirectory) ListActiveRestaurants(ctx context.Context) ([]models.RestaurantCandidate, error) {
	query := `
		SELECT id, name, latitude, longitude, schedule, COALESCE(tariff_api_key, '')
		FROM restaurants
		WHERE active = TRUE AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list restaurants", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer rows.Close()

	var out []models.RestaurantCandidate
	for rows.Next() {
		candidate, err := scanRestaurant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate)
	}

	return out, rows.Err()
}

func (r *PostgresRestaurantDirectory) GetRestaurant(ctx context.Context, id string) (*models.RestaurantCandidate, error) {
	query := `
		SELECT id, name, latitude, longitude, schedule, COALESCE(tariff_api_key, '')
		FROM restaurants
		WHERE id = $1 AND active = TRUE AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)
	candidate, err := scanRestaurant(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to fetch restaurant", logging.Fields{
			"restaurant_id": id,
			"error":         err.Error(),
		})
		return nil, err
	}

	return &candidate, nil
}

func (r *PostgresRestaurantDirectory) CountDishesAvailableAt(ctx context.Context, restaurantID string, dishIDs []string) (int, error) {
	if len(dishIDs) == 0 {
		return 0, nil
	}

	query := `
		SELECT COUNT(*)
		FROM restaurant_dishes rd
		JOIN dishes d ON d.id = rd.dish_id
		WHERE rd.restaurant_id = $1 AND rd.dish_id = ANY($2)
		  AND rd.available = TRUE AND d.active = TRUE
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, restaurantID, pq.Array(dishIDs)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// scanRestaurant maps one restaurants row, parsing the schedule blob
// once. An unparseable schedule yields a closed restaurant rather than
// an error, so one bad row never blocks matching.
func scanRestaurant(scan func(dest ...interface{}) error) (models.RestaurantCandidate, error) {
	var c models.RestaurantCandidate
	var scheduleJSON string

	if err := scan(&c.ID, &c.Name, &c.Location.Latitude, &c.Location.Longitude, &scheduleJSON, &c.TariffAPIKey); err != nil {
		return models.RestaurantCandidate{}, err
	}

	schedule, err := models.ParseWeeklySchedule(scheduleJSON)
	if err == nil {
		c.Schedule = schedule
	}
	return c, nil
}
