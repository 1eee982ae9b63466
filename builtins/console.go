package builtins

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/jscore/runtime"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetConsoleOutput redirects console output; nil leaves a stream unchanged.
func SetConsoleOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func createConsoleObject(realm *runtime.Realm) *runtime.Object {
	console := runtime.NewOrdinaryObject(realm.Intrinsic("%Object.prototype%"))
	setMethod(realm, console, "log", 0, consolePrinter(&stdout))
	setMethod(realm, console, "info", 0, consolePrinter(&stdout))
	setMethod(realm, console, "debug", 0, consolePrinter(&stdout))
	setMethod(realm, console, "error", 0, consolePrinter(&stderr))
	setMethod(realm, console, "warn", 0, consolePrinter(&stderr))
	return console
}

func consolePrinter(w *io.Writer) runtime.NativeFunc {
	return func(a *runtime.Agent, this *runtime.Value, args []*runtime.Value, nt *runtime.Object) (*runtime.Value, error) {
		parts := make([]string, len(args))
		for i, v := range args {
			if v.IsString() {
				parts[i] = runtime.GoString(v.Str)
				continue
			}
			parts[i] = Inspect(a, v)
		}
		fmt.Fprintln(*w, strings.Join(parts, " "))
		return runtime.Undefined, nil
	}
}

// Inspect renders v for diagnostic output without running guest code.
func Inspect(a *runtime.Agent, v *runtime.Value) string {
	var sb strings.Builder
	inspectValue(a, &sb, v, 0)
	return sb.String()
}

func inspectValue(a *runtime.Agent, sb *strings.Builder, v *runtime.Value, depth int) {
	switch v.Type {
	case runtime.TypeString:
		if depth == 0 {
			sb.WriteString(runtime.GoString(v.Str))
			return
		}
		sb.WriteString("'" + strings.ReplaceAll(runtime.GoString(v.Str), "'", `\'`) + "'")
	case runtime.TypeBigInt:
		sb.WriteString(v.BigInt.String() + "n")
	case runtime.TypeObject:
		inspectObject(a, sb, v.Object, depth)
	default:
		sb.WriteString(v.String())
	}
}

func ownString(o *runtime.Object, name string) string {
	if v, ok := o.OwnData(runtime.StrKey(name)); ok && v.IsString() {
		return runtime.GoString(v.Str)
	}
	return ""
}

func inspectObject(a *runtime.Agent, sb *strings.Builder, o *runtime.Object, depth int) {
	switch {
	case runtime.IsCallable(runtime.NewObject(o)):
		if name := ownString(o, "name"); name != "" {
			sb.WriteString("[Function: " + name + "]")
		} else {
			sb.WriteString("[Function (anonymous)]")
		}
		return
	case o.Kind == runtime.KindError:
		name, msg := "Error", ownString(o, "message")
		if proto := o.Proto(); proto != nil {
			if n := ownString(proto, "name"); n != "" {
				name = n
			}
		}
		if msg == "" {
			sb.WriteString(name)
		} else {
			sb.WriteString(name + ": " + msg)
		}
		return
	case o.Kind == runtime.KindProxy || o.Kind == runtime.KindPromise:
		sb.WriteString(o.Kind.String() + " {}")
		return
	}
	if depth > 2 || !a.EnterCycleGuard(o) {
		sb.WriteString("[Object]")
		return
	}
	defer a.LeaveCycleGuard(o)

	keys := o.OrdinaryOwnPropertyKeys()
	if o.Kind == runtime.KindArray {
		sb.WriteString("[")
		n := 0
		for _, k := range keys {
			if _, isIndex := k.ArrayIndex(); !isIndex {
				continue
			}
			if v, ok := o.OwnData(k); ok {
				if n > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(" ")
				inspectValue(a, sb, v, depth+1)
				n++
			}
		}
		if n > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("]")
		return
	}

	var members []string
	for _, k := range keys {
		desc, _ := o.OrdinaryGetOwnProperty(k)
		if !desc.Enumerable {
			continue
		}
		var item strings.Builder
		item.WriteString(k.String() + ": ")
		if desc.IsDataDescriptor() {
			inspectValue(a, &item, desc.Value, depth+1)
		} else {
			item.WriteString("[Getter/Setter]")
		}
		members = append(members, item.String())
	}
	if len(members) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteString("{ " + strings.Join(members, ", ") + " }")
}
