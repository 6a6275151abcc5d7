package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/wellpath/internal/pkg/wellpath"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	wellType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Well",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"location":   &graphql.Field{Type: graphql.String},
			"surface":    &graphql.Field{Type: geoPointType},
			"elevation":  &graphql.Field{Type: graphql.Float},
			"is_active":  &graphql.Field{Type: graphql.Boolean},
			"distance":   &graphql.Field{Type: graphql.Float},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	trajectoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trajectory",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"well_id":          &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"trajectory_type":  &graphql.Field{Type: graphql.String},
			"mag_declination":  &graphql.Field{Type: graphql.Float},
			"grid_convergence": &graphql.Field{Type: graphql.Float},
			"is_active":        &graphql.Field{Type: graphql.Boolean},
			"description":      &graphql.Field{Type: graphql.String},
			"created_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"md":    &graphql.Field{Type: graphql.Float},
			"inc":   &graphql.Field{Type: graphql.Float},
			"azi":   &graphql.Field{Type: graphql.Float},
			"tvd":   &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"dls":   &graphql.Field{Type: graphql.Float},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"east":  &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
			"tvd":   &graphql.Field{Type: graphql.Float},
		},
	})

	descriptorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Descriptor",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"label":       &graphql.Field{Type: graphql.String},
			"color":       &graphql.Field{Type: graphql.String},
			"diameter":    &graphql.Field{Type: graphql.Float},
			"radius":      &graphql.Field{Type: graphql.Float},
			"start_md":    &graphql.Field{Type: graphql.Float},
			"end_md":      &graphql.Field{Type: graphql.Float},
			"show_legend": &graphql.Field{Type: graphql.Boolean},
			"points":      &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"start_md": &graphql.Field{Type: graphql.Float},
			"end_md":   &graphql.Field{Type: graphql.Float},
			"clamped":  &graphql.Field{Type: graphql.Boolean},
			"points":   &graphql.Field{Type: graphql.NewList(pointType)},
		},
	})

	idArgs := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"wells": &graphql.Field{
				Type:        graphql.NewList(wellType),
				Description: "List all wells",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Wells.List(p.Context)
				},
			},
			"well": &graphql.Field{
				Type:        wellType,
				Description: "Get a well by ID",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Wells.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"wellsNearby": &graphql.Field{
				Type:        graphql.NewList(wellType),
				Description: "Find wells with a surface location near a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Wells.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"trajectory": &graphql.Field{
				Type:        trajectoryType,
				Description: "Get a trajectory by ID",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Trajectories.Get(p.Context, p.Args["id"].(string))
				},
			},
			"trajectoriesByWell": &graphql.Field{
				Type:        graphql.NewList(trajectoryType),
				Description: "List trajectories of a well",
				Args: graphql.FieldConfigArgument{
					"well_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Trajectories.ListByWell(p.Context, p.Args["well_id"].(string))
				},
			},
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Computed stations of a trajectory, by depth",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rows, err := deps.Trajectories.Stations(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					out := make([]wellpath.Station, len(rows))
					for i, r := range rows {
						out[i] = r.Station
					}
					return out, nil
				},
			},
			"descriptors": &graphql.Field{
				Type:        graphql.NewList(descriptorType),
				Description: "Renderable tubes of a trajectory",
				Args:        idArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					set, err := deps.Trajectories.Descriptors(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return set.Descriptors, nil
				},
			},
			"segment": &graphql.Field{
				Type:        segmentType,
				Description: "Centerline between two measured depths",
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"start": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"end":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					seg, err := deps.Trajectories.Interpolate(p.Context,
						p.Args["id"].(string), p.Args["start"].(float64), p.Args["end"].(float64))
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"start_md": seg.StartDepth,
						"end_md":   seg.EndDepth,
						"clamped":  seg.Clamped(),
						"points":   seg.Points,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
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
