package forms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkraev/atelier/internal/rules"
)

// Service resolves effective field state by combining stored schemas, the
// data-source catalog and the rules engine.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EffectiveField computes the presentation state of one field of a schema
// for the current form values: visibility and enablement from the field's
// dependencies, and the option list after FILTER dependencies ran.
func (s *Service) EffectiveField(ctx context.Context, schemaKey, fieldName string, values rules.FormValues) (*FieldState, error) {
	schema, err := s.repo.LoadSchema(ctx, schemaKey)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", schemaKey, err)
	}

	node := schema.FindNode(fieldName)
	if node == nil {
		return nil, fmt.Errorf("field %s not found in schema %s", fieldName, schemaKey)
	}

	options := node.Options
	if node.DataSource != "" {
		options, err = s.dataSourceOptions(ctx, node.DataSource)
		if err != nil {
			return nil, err
		}
	}

	return &FieldState{
		Visible: rules.Visible(node.Dependencies, values),
		Enabled: rules.Enabled(node.Dependencies, values),
		Options: rules.FilterOptions(node.Dependencies, options, values),
	}, nil
}

// dataSourceOptions decodes a catalog entry into options.
func (s *Service) dataSourceOptions(ctx context.Context, key string) ([]rules.Option, error) {
	body, err := s.repo.LoadDataSource(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading data source %s: %w", key, err)
	}
	var options []rules.Option
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("decoding data source %s: %w", key, err)
	}
	return options, nil
}
