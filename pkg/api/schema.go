package api

import (
	"encoding/json"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/plantops/assetgraph/pkg/catalog"
	"github.com/plantops/assetgraph/pkg/log"
	"github.com/plantops/assetgraph/pkg/metrics"
	"github.com/plantops/assetgraph/pkg/types"
	"github.com/plantops/assetgraph/pkg/views"
)

// jsonScalar passes arbitrary JSON values through unchanged. Used for the
// opaque snapshot fields whose shape the server does not interpret.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return parseLiteralJSON(valueAST)
	},
})

func parseLiteralJSON(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.IntValue:
		return v.Value
	case *ast.FloatValue:
		return v.Value
	case *ast.ObjectValue:
		obj := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			obj[f.Name.Value] = parseLiteralJSON(f.Value)
		}
		return obj
	case *ast.ListValue:
		list := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			list = append(list, parseLiteralJSON(item))
		}
		return list
	default:
		return nil
	}
}

// buildSchema wires the catalog resolver and snapshot service into an
// executable schema.
func buildSchema(resolver *catalog.Resolver, snapshots *views.Service) (graphql.Schema, error) {
	logger := log.WithComponent("graphql")

	assetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Asset",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"type": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"parentId": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					asset, ok := p.Source.(*types.Asset)
					if !ok || asset.ParentID == nil {
						return nil, nil
					}
					return *asset.ParentID, nil
				},
			},
		},
	})

	// Self-referential field added after construction.
	assetType.AddFieldConfig("children", &graphql.Field{
		Type: graphql.NewList(assetType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			asset, ok := p.Source.(*types.Asset)
			if !ok {
				return nil, nil
			}
			if loader := catalog.LoaderFrom(p.Context); loader != nil {
				return loader.Children(p.Context, asset.ID)
			}
			return resolver.Children(p.Context, &asset.ID)
		},
	})

	snapshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Snapshot",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt":       &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"activeSignalIds": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
			"hiddenSignalIds": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
			"dateRange": &graphql.Field{
				Type: jsonScalar,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := p.Source.(*types.Snapshot)
					if !ok {
						return nil, nil
					}
					return decodeOpaque(snap.DateRange), nil
				},
			},
			"customColors": &graphql.Field{
				Type: jsonScalar,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := p.Source.(*types.Snapshot)
					if !ok {
						return nil, nil
					}
					return decodeOpaque(snap.CustomColors), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"assets": &graphql.Field{
				Type: graphql.NewList(assetType),
				Args: graphql.FieldConfigArgument{
					"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var parentID *string
					if raw, ok := p.Args["parentId"]; ok && raw != nil {
						id := fmt.Sprintf("%v", raw)
						parentID = &id
					}
					assets, err := resolver.Children(p.Context, parentID)
					if err != nil {
						return nil, err
					}
					if err := primeChildren(p, assets); err != nil {
						return nil, err
					}
					return assets, nil
				},
			},
			"searchAssets": &graphql.Field{
				Type: graphql.NewList(assetType),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					query, _ := p.Args["query"].(string)
					assets, err := resolver.Search(p.Context, query)
					if err != nil {
						return nil, err
					}
					if err := primeChildren(p, assets); err != nil {
						return nil, err
					}
					return assets, nil
				},
			},
			"getAsset": &graphql.Field{
				Type: assetType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := fmt.Sprintf("%v", p.Args["id"])
					asset, err := resolver.Get(p.Context, id)
					if err != nil {
						return nil, err
					}
					if asset == nil {
						return nil, nil
					}
					return asset, nil
				},
			},
			"getAssetPath": &graphql.Field{
				Type: graphql.NewList(assetType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := fmt.Sprintf("%v", p.Args["id"])
					path, truncated, err := resolver.Path(p.Context, id)
					if err != nil {
						return nil, err
					}
					if truncated {
						metrics.PathTruncationsTotal.Inc()
						logger.Warn().Str("asset_id", id).Int("depth", len(path)).Msg("asset path truncated at depth cap")
					}
					return path, nil
				},
			},
			"getAssetsByIds": &graphql.Field{
				Type: graphql.NewList(assetType),
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["ids"].([]interface{})
					ids := make([]string, 0, len(raw))
					for _, v := range raw {
						ids = append(ids, fmt.Sprintf("%v", v))
					}
					assets, err := resolver.GetByIDs(p.Context, ids)
					if err != nil {
						return nil, err
					}
					if err := primeChildren(p, assets); err != nil {
						return nil, err
					}
					return assets, nil
				},
			},
			"snapshots": &graphql.Field{
				Type: graphql.NewList(snapshotType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return snapshots.List(p.Context)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"saveSnapshot": &graphql.Field{
				Type: graphql.NewNonNull(snapshotType),
				Args: graphql.FieldConfigArgument{
					"name":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"activeSignalIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
					"hiddenSignalIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
					"dateRange":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(jsonScalar)},
					"customColors":    &graphql.ArgumentConfig{Type: jsonScalar},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					dateRange, err := encodeOpaque(p.Args["dateRange"])
					if err != nil {
						return nil, fmt.Errorf("invalid dateRange: %w", err)
					}
					customColors, err := encodeOpaque(p.Args["customColors"])
					if err != nil {
						return nil, fmt.Errorf("invalid customColors: %w", err)
					}
					return snapshots.Save(p.Context, name,
						idList(p.Args["activeSignalIds"]),
						idList(p.Args["hiddenSignalIds"]),
						dateRange, customColors)
				},
			},
			"deleteSnapshot": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := fmt.Sprintf("%v", p.Args["id"])
					return snapshots.Delete(p.Context, id)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// primeChildren batch-loads children for a list result in one store call when
// the selection asks for them, so the per-asset children resolver hits the
// loader cache instead of issuing one query per parent.
func primeChildren(p graphql.ResolveParams, assets []*types.Asset) error {
	if len(assets) == 0 || !selectsChildren(p) {
		return nil
	}
	loader := catalog.LoaderFrom(p.Context)
	if loader == nil {
		return nil
	}
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return loader.Prime(p.Context, ids)
}

// selectsChildren reports whether the current field's selection set includes
// the children field.
func selectsChildren(p graphql.ResolveParams) bool {
	for _, fieldAST := range p.Info.FieldASTs {
		if fieldAST.SelectionSet == nil {
			continue
		}
		for _, sel := range fieldAST.SelectionSet.Selections {
			if f, ok := sel.(*ast.Field); ok && f.Name != nil && f.Name.Value == "children" {
				return true
			}
		}
	}
	return false
}

// encodeOpaque serializes a client-supplied JSON value for storage. The
// server never interprets the contents.
func encodeOpaque(raw interface{}) (string, error) {
	if raw == nil {
		return "", nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeOpaque restores a stored opaque value to its JSON shape. Values
// written before encoding was introduced come back as plain strings.
func decodeOpaque(stored string) interface{} {
	if stored == "" {
		return nil
	}
	var value interface{}
	if err := json.Unmarshal([]byte(stored), &value); err != nil {
		return stored
	}
	return value
}

func idList(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, v := range items {
		ids = append(ids, fmt.Sprintf("%v", v))
	}
	return ids
}
