package sim

import (
	"net/url"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	regen "github.com/zach-klippenstein/goregen"
)

const restorationPattern = `[a-f0-9]{8}-[a-f0-9]{4}-4[a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}`

// document is a booted page: a goja runtime running pageScript
type document struct {
	location   *url.URL
	vm         *goja.Runtime
	controller *goja.Object
}

// host is what the page script can call back into
type host interface {
	postMessage(name string, data map[string]interface{})
	fetch(identifier, location string)
}

func newDocument(h host, location *url.URL, body string) (*document, error) {
	vm := goja.New()
	registry := new(require.Registry)
	registry.Enable(vm)
	console.Enable(vm)

	hostObj := vm.NewObject()
	hostObj.Set("postMessage", func(call goja.FunctionCall) goja.Value {
		data, _ := call.Argument(1).Export().(map[string]interface{})
		h.postMessage(call.Argument(0).String(), data)
		return goja.Undefined()
	})
	hostObj.Set("fetch", func(call goja.FunctionCall) goja.Value {
		h.fetch(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	hostObj.Set("uuid", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(uuid.New().String())
	})
	hostObj.Set("restorationIdentifier", func(call goja.FunctionCall) goja.Value {
		id, err := regen.Generate(restorationPattern)
		if err != nil {
			id = uuid.New().String()
		}
		return vm.ToValue(id)
	})

	vm.Set("host", hostObj)
	vm.Set("bootLocation", location.String())
	vm.Set("bootBody", body)

	if _, err := vm.RunString(pageScript); err != nil {
		return nil, errors.Wrap(err, "running page script")
	}

	controller := vm.Get("controller")
	if controller == nil || goja.IsUndefined(controller) {
		return nil, errors.New("page script did not define a controller")
	}
	return &document{location: location, vm: vm, controller: controller.ToObject(vm)}, nil
}

// call a controller function
func (d *document) call(name string, args ...interface{}) (goja.Value, error) {
	fn, ok := goja.AssertFunction(d.controller.Get(name))
	if !ok {
		return nil, errors.Errorf("controller.%s is not a function", name)
	}

	values := make([]goja.Value, len(args))
	for i, arg := range args {
		values[i] = d.vm.ToValue(arg)
	}
	v, err := fn(d.controller, values...)
	return v, errors.Wrapf(err, "calling controller.%s", name)
}

func (d *document) body() string {
	v, err := d.call("body")
	if err != nil {
		return ""
	}
	return v.String()
}

func (d *document) historyLength() int {
	v, err := d.call("historyLength")
	if err != nil {
		return 0
	}
	return int(v.ToInteger())
}
