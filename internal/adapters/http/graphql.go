package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"lat":      &graphql.Field{Type: graphql.Float},
			"lon":      &graphql.Field{Type: graphql.Float},
			"lat_text": &graphql.Field{Type: graphql.String},
			"lon_text": &graphql.Field{Type: graphql.String},
		},
	})

	dmsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DMS",
		Fields: graphql.Fields{
			"degrees":    &graphql.Field{Type: graphql.Int},
			"minutes":    &graphql.Field{Type: graphql.Int},
			"seconds":    &graphql.Field{Type: graphql.Float},
			"hemisphere": &graphql.Field{Type: graphql.String},
			"text":       &graphql.Field{Type: graphql.String},
		},
	})

	radiusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Radius",
		Fields: graphql.Fields{
			"value": &graphql.Field{Type: graphql.Int},
			"unit":  &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
			"min":   &graphql.Field{Type: graphql.Int},
			"max":   &graphql.Field{Type: graphql.Int},
			"km":    &graphql.Field{Type: graphql.Float},
			"miles": &graphql.Field{Type: graphql.Float},
		},
	})

	destinationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Destination",
		Fields: graphql.Fields{
			"point":         &graphql.Field{Type: pointType},
			"distance_km":   &graphql.Field{Type: graphql.Float},
			"distance_text": &graphql.Field{Type: graphql.String},
			"bearing_deg":   &graphql.Field{Type: graphql.Float},
			"generated_at":  &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"origin":       &graphql.Field{Type: pointType},
			"origin_label": &graphql.Field{Type: graphql.String},
			"radius":       &graphql.Field{Type: radiusType},
			"destination":  &graphql.Field{Type: destinationType},
		},
	})

	distanceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Distance",
		Fields: graphql.Fields{
			"distance_km":    &graphql.Field{Type: graphql.Float},
			"distance_miles": &graphql.Field{Type: graphql.Float},
			"text":           &graphql.Field{Type: graphql.String},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"display_name": &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
			"point":        &graphql.Field{Type: pointType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"distance": &graphql.Field{
				Type:        distanceType,
				Description: "Great-circle distance between two points",
				Args: graphql.FieldConfigArgument{
					"from_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"from_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"unit":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "km"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.GeoPoint{Lat: p.Args["from_lat"].(float64), Lon: p.Args["from_lon"].(float64)}
					to := domain.GeoPoint{Lat: p.Args["to_lat"].(float64), Lon: p.Args["to_lon"].(float64)}
					if err := from.Validate(); err != nil {
						return nil, err
					}
					if err := to.Validate(); err != nil {
						return nil, err
					}
					unit, err := domain.ParseUnit(p.Args["unit"].(string))
					if err != nil {
						return nil, err
					}
					km := geospatial.Distance(from, to)
					return map[string]interface{}{
						"distance_km":    km,
						"distance_miles": geospatial.KmToMiles(km),
						"text":           geospatial.FormatDistance(km, unit),
					}, nil
				},
			},
			"dms": &graphql.Field{
				Type:        dmsType,
				Description: "Convert a decimal latitude or longitude to degrees, minutes, seconds",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"axis":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "lat"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					axis, err := domain.ParseAxis(p.Args["axis"].(string))
					if err != nil {
						return nil, err
					}
					value := p.Args["value"].(float64)
					pt := domain.GeoPoint{Lat: value}
					if axis == domain.AxisLongitude {
						pt = domain.GeoPoint{Lon: value}
					}
					if err := pt.Validate(); err != nil {
						return nil, err
					}
					return dmsMap(geospatial.ToDMS(value, axis)), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get an explorer session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Explorer.GetSession(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return sessionMap(usecases.BuildView(sess)), nil
				},
			},
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Search places by name, limit 1 to 50",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Places == nil {
						return nil, errors.New("place search not available")
					}
					matches, err := deps.Places.Search(p.Context, p.Args["query"].(string), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					result := make([]map[string]interface{}, 0, len(matches))
					for _, m := range matches {
						result = append(result, map[string]interface{}{
							"display_name": m.DisplayName,
							"source":       m.Source,
							"point":        pointMap(usecases.NewPointView(m.Point)),
						})
					}
					return result, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSession": &graphql.Field{
				Type:        sessionType,
				Description: "Start a session at the default origin",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, err := deps.Explorer.NewSession(p.Context)
					if err != nil {
						return nil, err
					}
					return sessionMap(usecases.BuildView(sess)), nil
				},
			},
			"sample": &graphql.Field{
				Type:        sessionType,
				Description: "Draw a new destination for a session",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"seed":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var seed *uint64
					if v, ok := p.Args["seed"].(int); ok {
						if v < 0 {
							return nil, errors.New("seed must not be negative")
						}
						s := uint64(v)
						seed = &s
					}
					sess, err := deps.Explorer.Sample(p.Context, p.Args["session"].(string), seed)
					if err != nil {
						return nil, err
					}
					return sessionMap(usecases.BuildView(sess)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func pointMap(v usecases.PointView) map[string]interface{} {
	return map[string]interface{}{
		"lat":      v.Lat,
		"lon":      v.Lon,
		"lat_text": v.LatText,
		"lon_text": v.LonText,
	}
}

func dmsMap(d domain.DMS) map[string]interface{} {
	return map[string]interface{}{
		"degrees":    d.Degrees,
		"minutes":    d.Minutes,
		"seconds":    d.Seconds,
		"hemisphere": string(d.Hemisphere),
		"text":       geospatial.FormatDMS(d),
	}
}

func sessionMap(v usecases.SessionView) map[string]interface{} {
	m := map[string]interface{}{
		"id":           v.ID,
		"origin":       pointMap(v.Origin),
		"origin_label": v.OriginLabel,
		"radius": map[string]interface{}{
			"value": v.Radius.Value,
			"unit":  string(v.Radius.Unit),
			"label": v.Radius.Label,
			"min":   v.Radius.Min,
			"max":   v.Radius.Max,
			"km":    v.Radius.Km,
			"miles": v.Radius.Miles,
		},
	}
	if d := v.Destination; d != nil {
		m["destination"] = map[string]interface{}{
			"point":         pointMap(d.PointView),
			"distance_km":   d.DistanceKm,
			"distance_text": d.DistanceText,
			"bearing_deg":   d.BearingDeg,
			"generated_at":  d.GeneratedAt.Format(time.RFC3339),
		}
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
