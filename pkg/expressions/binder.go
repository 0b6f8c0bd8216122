package expressions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

var ErrEvaluationTimeout = errors.New("expression evaluation timed out")

// expressionData is implemented by items that expose json, binary and itemIndex to
// expressions.
type expressionData interface {
	ExpressionData() map[string]any
}

// Binder resolves {{ expr }} placeholders in node settings with a JavaScript runtime
type Binder struct {
	exprRegex      *regexp.Regexp
	logger         zerolog.Logger
	defaultTimeout time.Duration
}

type BinderOptions struct {
	Logger         zerolog.Logger
	DefaultTimeout time.Duration
}

func DefaultBinderOptions() BinderOptions {
	return BinderOptions{
		Logger:         zerolog.Nop(),
		DefaultTimeout: 5 * time.Second,
	}
}

func NewBinder(opts BinderOptions) *Binder {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 5 * time.Second
	}

	return &Binder{
		exprRegex:      regexp.MustCompile(`\{\{(.*?)\}\}`),
		logger:         opts.Logger,
		defaultTimeout: opts.DefaultTimeout,
	}
}

// BindToStruct evaluates every expression in settings against item and decodes the
// result into target through JSON.
func (b *Binder) BindToStruct(ctx context.Context, item any, target any, settings map[string]any) error {
	if target == nil || reflect.ValueOf(target).Kind() != reflect.Ptr {
		return fmt.Errorf("validation failed: target must be a pointer")
	}

	if settings == nil {
		settings = map[string]any{}
	}

	scope := newScope(item)

	boundData, err := b.bindValue(ctx, scope, settings)
	if err != nil {
		return fmt.Errorf("binding failed: %w", err)
	}

	jsonData, err := json.Marshal(boundData)
	if err != nil {
		return fmt.Errorf("failed to marshal bound data: %w", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal to target struct: %w", err)
	}

	return nil
}

// BindValue resolves expressions inside an arbitrary settings value.
func (b *Binder) BindValue(ctx context.Context, item any, value any) (any, error) {
	return b.bindValue(ctx, newScope(item), value)
}

func (b *Binder) bindValue(ctx context.Context, scope map[string]any, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return b.bindString(ctx, scope, v)
	case map[string]any:
		result := make(map[string]any, len(v))

		for key, nested := range v {
			bound, err := b.bindValue(ctx, scope, nested)
			if err != nil {
				return nil, fmt.Errorf("failed to bind key '%s': %w", key, err)
			}

			result[key] = bound
		}

		return result, nil
	case []any:
		result := make([]any, len(v))

		for i, nested := range v {
			bound, err := b.bindValue(ctx, scope, nested)
			if err != nil {
				return nil, fmt.Errorf("failed to bind index %d: %w", i, err)
			}

			result[i] = bound
		}

		return result, nil
	default:
		return value, nil
	}
}

// bindString keeps the evaluated type when str is exactly one expression and
// interpolates text otherwise.
func (b *Binder) bindString(ctx context.Context, scope map[string]any, str string) (any, error) {
	matches := b.exprRegex.FindAllStringSubmatch(str, -1)
	if len(matches) == 0 {
		return str, nil
	}

	if len(matches) == 1 && matches[0][0] == str {
		return b.evaluate(ctx, scope, strings.TrimSpace(matches[0][1]))
	}

	result := str
	for _, match := range matches {
		expression := strings.TrimSpace(match[1])

		value, err := b.evaluate(ctx, scope, expression)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate expression '%s': %w", expression, err)
		}

		result = strings.Replace(result, match[0], valueToString(value), 1)
	}

	return result, nil
}

func (b *Binder) evaluate(ctx context.Context, scope map[string]any, expression string) (any, error) {
	if expression == "" {
		return "", nil
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	for name, value := range scope {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	timer := time.AfterFunc(b.defaultTimeout, func() {
		vm.Interrupt(ErrEvaluationTimeout)
	})
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	value, err := vm.RunString("(" + expression + ")")
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
		}

		b.logger.Warn().Err(err).Str("expression", expression).Msg("expression evaluation failed")

		return nil, fmt.Errorf("evaluation error: %w", err)
	}

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}

	return value.Export(), nil
}

func newScope(item any) map[string]any {
	scope := map[string]any{
		"$json":      map[string]any{},
		"$binary":    map[string]any{},
		"$itemIndex": 0,
	}

	switch v := item.(type) {
	case expressionData:
		data := v.ExpressionData()

		if j, ok := data["json"]; ok {
			scope["$json"] = j
		}

		if bin, ok := data["binary"]; ok {
			scope["$binary"] = bin
		}

		if idx, ok := data["itemIndex"]; ok {
			scope["$itemIndex"] = idx
		}
	case map[string]any:
		scope["$json"] = v
	}

	return scope
}

func valueToString(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}

		return string(jsonBytes)
	}
}
