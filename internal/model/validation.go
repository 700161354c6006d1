package model

import (
	"errors"
	"fmt"
)

var (
	errPropertiesMissing = errors.New("model builder: at least one property is required")
	errPropertyKeyEmpty  = errors.New("model builder: property key is required")
)

func validateProperties(props map[string]Property) error {
	if len(props) == 0 {
		return errPropertiesMissing
	}
	for key, prop := range props {
		if key == "" {
			return errPropertyKeyEmpty
		}
		if err := validateProperty(prop); err != nil {
			return fmt.Errorf("model builder: property %q: %w", key, err)
		}
	}
	return nil
}

func validateProperty(prop Property) error {
	if prop.ValueType == FieldKindParamManager && prop.ValueTypeConstraint == nil {
		return errors.New("param manager requires a value type constraint")
	}
	for nested, advanced := range prop.AdvanceProperties {
		if err := validateProperty(advanced); err != nil {
			return fmt.Errorf("advanced property %q: %w", nested, err)
		}
	}
	return nil
}
