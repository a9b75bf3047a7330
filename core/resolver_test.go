package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticResolver(t *testing.T) {
	params, err := StaticResolver{}.Resolve(context.Background(), map[string]any{
		"name":  "Ada",
		"items": map[string]any{"a": []any{"1"}},
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, ok := params["items"].(*TableValue); !ok {
		t.Errorf("items = %T, want *TableValue", params["items"])
	}
}

func TestCommandResolver(t *testing.T) {
	dir := t.TempDir()
	echo := writeScript(t, dir, "echo.sh", "cat\n")
	fixed := writeScript(t, dir, "fixed.sh", `cat >/dev/null
echo '{"name":"Ada","items":{"qty":[1,2.5],"sku":["a","b"]}}'
`)
	ordered := writeScript(t, dir, "ordered.sh", `echo '{"items":{"name":["pen","ink"],"amount":["3","4"],"code":["p","i"]}}'
`)
	list := writeScript(t, dir, "list.sh", "echo '[1,2]'\n")
	empty := writeScript(t, dir, "empty.sh", "exit 0\n")
	fail := writeScript(t, dir, "fail.sh", "echo boom >&2\nexit 3\n")

	ctx := context.Background()

	t.Run("passes raw params on stdin", func(t *testing.T) {
		r := NewCommandResolver(testLogger(), echo, "")
		params, err := r.Resolve(ctx, map[string]any{"who": "Ada", "n": 2})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if params["who"] != "Ada" {
			t.Errorf("who = %v, want Ada", params["who"])
		}
		if s, _ := FormatScalar(params["n"]); s != "2" {
			t.Errorf("n = %v, want 2", params["n"])
		}
	})

	t.Run("table result", func(t *testing.T) {
		params, err := NewCommandResolver(testLogger(), fixed, "").Resolve(ctx, nil)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		table, ok := params["items"].(*TableValue)
		if !ok {
			t.Fatalf("items = %T, want *TableValue", params["items"])
		}
		if s, _ := FormatScalar(table.Value(0, 1)); s != "2.5" {
			t.Errorf("qty[1] = %v, want 2.5", table.Value(0, 1))
		}
	})

	t.Run("table columns keep printed order", func(t *testing.T) {
		params, err := NewCommandResolver(testLogger(), ordered, "").Resolve(ctx, nil)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		table, ok := params["items"].(*TableValue)
		if !ok {
			t.Fatalf("items = %T, want *TableValue", params["items"])
		}
		want := []string{"name", "amount", "code"}
		if len(table.Columns) != len(want) {
			t.Fatalf("columns = %d, want %d", len(table.Columns), len(want))
		}
		for i, name := range want {
			if table.Columns[i].Name != name {
				t.Errorf("column %d = %q, want %q", i, table.Columns[i].Name, name)
			}
		}
		if table.Value(1, 1) != "4" {
			t.Errorf("amount[1] = %v, want 4", table.Value(1, 1))
		}
	})

	t.Run("interpreter", func(t *testing.T) {
		script := filepath.Join(dir, "plain.sh")
		if err := os.WriteFile(script, []byte(`echo '{"x":"y"}'`), 0644); err != nil {
			t.Fatal(err)
		}
		params, err := NewCommandResolver(testLogger(), script, "sh").Resolve(ctx, nil)
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if params["x"] != "y" {
			t.Errorf("x = %v, want y", params["x"])
		}
	})

	for name, path := range map[string]string{"list result": list, "no output": empty} {
		t.Run(name, func(t *testing.T) {
			_, err := NewCommandResolver(testLogger(), path, "").Resolve(ctx, nil)
			if !errors.Is(err, ErrInvalidExtensionResult) {
				t.Fatalf("error = %v, want ErrInvalidExtensionResult", err)
			}
		})
	}

	t.Run("non-zero exit", func(t *testing.T) {
		_, err := NewCommandResolver(testLogger(), fail, "").Resolve(ctx, nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, ErrInvalidExtensionResult) {
			t.Errorf("exit failure reported as invalid result: %v", err)
		}
	})
}

func TestCommandResolver_PythonDefault(t *testing.T) {
	r := NewCommandResolver(testLogger(), "prepare.py", "")
	name, args := r.command()
	if name != "python3" || len(args) != 1 || args[0] != "prepare.py" {
		t.Errorf("command = %s %v, want python3 [prepare.py]", name, args)
	}
}
