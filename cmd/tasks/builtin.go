package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/kingrea/tasklaunch/launcher"
	"github.com/kingrea/tasklaunch/plugins"
	"github.com/kingrea/tasklaunch/task"
)

func registerBuiltins(l *launcher.Launcher) error {
	funcs := map[string]any{
		"task_send_message__notrepeat__message_str": func(a task.Args) (any, error) {
			msg, err := a.Text("message")
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("sent: %s", msg), nil
		},
		"task_square_root__detail__value_float": func(a task.Args) (any, error) {
			v, err := a.Float("value")
			if err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, task.NewInputError("value must not be negative")
			}
			return math.Sqrt(v), nil
		},
	}
	for _, key := range []string{
		"task_send_message__notrepeat__message_str",
		"task_square_root__detail__value_float",
	} {
		if err := l.AddFunc(key, funcs[key]); err != nil {
			return err
		}
	}

	defaults := l.Defaults()
	withDefaults := func(opts ...task.Option) []task.Option {
		return append(append([]task.Option(nil), defaults...), opts...)
	}

	sum, err := task.New("Sum", sumValues, withDefaults(
		task.WithArgs(task.List("values", "numbers separated by spaces", " ", task.Float())),
	)...)
	if err != nil {
		return err
	}
	if err := l.Add(sum); err != nil {
		return err
	}

	point, err := task.New("Move Point", movePoint, withDefaults(
		task.WithDetail(true),
		task.WithArgs(
			task.List("point", "x,y", ",", task.Int(), task.Int()),
			task.Single("step", task.Int(), "step"),
		),
	)...)
	if err != nil {
		return err
	}
	if err := l.Add(point); err != nil {
		return err
	}

	echo, err := task.Decorate(withDefaults(
		task.WithName("Echo"),
		task.WithRepeat(false),
		task.WithArgs(task.Single("text", task.String(), "text")),
	)...)(func(a map[string]any) any { return a["text"] })
	if err != nil {
		return err
	}
	return l.Add(echo)
}

// builtinCatalog exposes functions manifests can bind by name.
func builtinCatalog() plugins.Catalog {
	return plugins.Catalog{
		"sum":   sumValues,
		"upper": upper,
	}
}

func sumValues(a task.Args) (any, error) {
	values, err := a.List("values")
	if err != nil {
		return nil, err
	}
	var total float64
	for _, v := range values {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("values: unexpected element %T", v)
		}
		total += f
	}
	return total, nil
}

func movePoint(a task.Args) (any, error) {
	point, err := a.List("point")
	if err != nil {
		return nil, err
	}
	step, err := a.Int("step")
	if err != nil {
		return nil, err
	}
	x, _ := point[0].(int)
	y, _ := point[1].(int)
	return fmt.Sprintf("(%d, %d)", x+step, y+step), nil
}

func upper(a task.Args) (any, error) {
	var parts []string
	for _, name := range a.Names() {
		v, _ := a.Get(name)
		parts = append(parts, strings.ToUpper(fmt.Sprint(v)))
	}
	return strings.Join(parts, " "), nil
}
