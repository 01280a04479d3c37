package strategy

import (
	"fmt"
)

// BaseStrategy provides the naming and parameter plumbing shared by rules
type BaseStrategy struct {
	name       string
	parameters map[string]interface{}
}

// NewBaseStrategy creates a new base strategy
func NewBaseStrategy(name string, parameters map[string]interface{}) *BaseStrategy {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return &BaseStrategy{
		name:       name,
		parameters: parameters,
	}
}

// GetName returns the strategy name
func (s *BaseStrategy) GetName() string {
	return s.name
}

// GetParameters returns the strategy parameters
func (s *BaseStrategy) GetParameters() map[string]interface{} {
	return s.parameters
}

// GetParameter returns a raw parameter value
func (s *BaseStrategy) GetParameter(key string) interface{} {
	return s.parameters[key]
}

// GetParameterFloat64 returns a parameter as float64
func (s *BaseStrategy) GetParameterFloat64(key string) (float64, error) {
	return ParamFloat64(s.parameters, key)
}

// GetParameterInt returns a parameter as int
func (s *BaseStrategy) GetParameterInt(key string) (int, error) {
	return ParamInt(s.parameters, key)
}

// ParamFloat64 reads a numeric parameter from a parameter map
func ParamFloat64(params map[string]interface{}, key string) (float64, error) {
	val, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("parameter %s not found", key)
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("parameter %s is not a number", key)
	}
}

// ParamInt reads an integer parameter from a parameter map
func ParamInt(params map[string]interface{}, key string) (int, error) {
	val, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("parameter %s not found", key)
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("parameter %s is not an integer", key)
	}
}

// ParamFloat64Or returns the parameter or def when it is missing or malformed
func ParamFloat64Or(params map[string]interface{}, key string, def float64) float64 {
	if v, err := ParamFloat64(params, key); err == nil {
		return v
	}
	return def
}

// ParamIntOr returns the parameter or def when it is missing or malformed
func ParamIntOr(params map[string]interface{}, key string, def int) int {
	if v, err := ParamInt(params, key); err == nil {
		return v
	}
	return def
}
