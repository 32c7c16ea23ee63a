package postgres

import (
	"context"
	"strconv"

	"github.com/samirrijal/neverbeen/internal/core/domain"
)

// PlaceRepo implements ports.PlaceRepository and ports.PlaceSearcher over
// the local gazetteer table.
type PlaceRepo struct {
	db *DB
}

func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

func (r *PlaceRepo) Name() string { return "gazetteer" }

func (r *PlaceRepo) Upsert(ctx context.Context, name string, p domain.GeoPoint, countryCode string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO places (name, country_code, lat, lon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, country_code) DO UPDATE SET lat = EXCLUDED.lat, lon = EXCLUDED.lon
	`, name, countryCode, p.Lat, p.Lon)
	return err
}

// Search does a trigram match on place names, best match first.
func (r *PlaceRepo) Search(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, country_code, lat, lon, similarity(name, $1) AS sim
		FROM places
		WHERE name % $1 OR name ILIKE $1 || '%'
		ORDER BY sim DESC, name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		var (
			name, country string
			lat, lon, sim float64
		)
		if err := rows.Scan(&name, &country, &lat, &lon, &sim); err != nil {
			return nil, err
		}
		display := name
		if country != "" {
			display = name + ", " + country
		}
		places = append(places, domain.Place{
			DisplayName: display,
			Lat:         strconv.FormatFloat(lat, 'f', -1, 64),
			Lon:         strconv.FormatFloat(lon, 'f', -1, 64),
			Source:      r.Name(),
		})
	}
	return places, rows.Err()
}
