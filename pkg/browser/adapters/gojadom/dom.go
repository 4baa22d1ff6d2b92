package gojadom

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// XPathResult type constants used by document.evaluate.
const (
	xpathOrderedSnapshot = 7
	xpathFirstOrdered    = 9
)

// install sets up the global window, document and node prototypes.
func (e *Engine) install() {
	vm := e.vm
	global := vm.GlobalObject()
	e.window = global

	_ = global.Set("window", global)
	_ = global.Set("self", global)

	e.elementProto = e.newNodeProto(true)
	e.textProto = e.newNodeProto(false)
	e.document = e.newDocumentObject()
	_ = global.Set("document", e.document)

	e.installWindow(global)
	e.installConsole(global)
}

// --- Window ---

func (e *Engine) installWindow(global *goja.Object) {
	vm := e.vm
	win := e.doc.ctx.top

	_ = global.Set("alert", func(call goja.FunctionCall) goja.Value {
		win.openDialog(dialogAlert, call.Argument(0).String())
		return goja.Undefined()
	})
	// Dialogs cannot block the worker, so confirm and prompt answer immediately.
	_ = global.Set("confirm", func(call goja.FunctionCall) goja.Value {
		win.openDialog(dialogConfirm, call.Argument(0).String())
		return vm.ToValue(true)
	})
	_ = global.Set("prompt", func(call goja.FunctionCall) goja.Value {
		win.openDialog(dialogPrompt, call.Argument(0).String())
		if def := call.Argument(1); !goja.IsUndefined(def) && !goja.IsNull(def) {
			return vm.ToValue(def.String())
		}
		return vm.ToValue("")
	})
	_ = global.Set("open", func(call goja.FunctionCall) goja.Value {
		target := "about:blank"
		if arg := call.Argument(0); !goja.IsUndefined(arg) && arg.String() != "" {
			target = e.doc.resolve(arg.String())
		}
		if _, err := win.host.openWindow(target); err != nil {
			e.logger.Warn("window.open failed", zap.String("url", target), zap.Error(err))
		}
		return goja.Null()
	})
	_ = global.Set("close", func(call goja.FunctionCall) goja.Value {
		win.host.loop.Post(func() {
			_ = win.Close()
		})
		return goja.Undefined()
	})
	_ = global.Set("setTimeout", e.setTimeout)
	_ = global.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		delete(e.timers, call.Argument(0).ToInteger())
		return goja.Undefined()
	})
	_ = global.Set("getComputedStyle", func(call goja.FunctionCall) goja.Value {
		n := e.unwrap(call.Argument(0))
		if n == nil {
			e.throw("TypeError", "getComputedStyle requires an element")
		}
		style := vm.NewObject()
		display, visibility := computedStyle(n)
		_ = style.Set("display", display)
		_ = style.Set("visibility", visibility)
		return style
	})

	location := vm.NewObject()
	e.accessor(location, "href", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(e.doc.url)
	}, func(call goja.FunctionCall) goja.Value {
		e.navigate(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = location.Set("assign", func(call goja.FunctionCall) goja.Value {
		e.navigate(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = location.Set("reload", func(call goja.FunctionCall) goja.Value {
		e.navigate(e.doc.url)
		return goja.Undefined()
	})
	_ = location.Set("toString", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.doc.url)
	})
	_ = global.Set("location", location)

	history := vm.NewObject()
	_ = history.Set("back", func(call goja.FunctionCall) goja.Value {
		if err := win.GoBack(); err != nil {
			e.logger.Debug("history.back ignored", zap.Error(err))
		}
		return goja.Undefined()
	})
	_ = history.Set("forward", func(call goja.FunctionCall) goja.Value {
		if err := win.GoForward(); err != nil {
			e.logger.Debug("history.forward ignored", zap.Error(err))
		}
		return goja.Undefined()
	})
	e.accessor(history, "length", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(len(win.history))
	}, nil)
	_ = global.Set("history", history)

	navigator := vm.NewObject()
	_ = navigator.Set("userAgent", win.host.rt.cfg.UserAgent)
	_ = global.Set("navigator", navigator)
}

func (e *Engine) navigate(target string) {
	if err := e.doc.ctx.navigate(e.doc.resolve(target), nil); err != nil {
		e.logger.Warn("script navigation failed", zap.String("url", target), zap.Error(err))
	}
}

func (e *Engine) setTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		return e.vm.ToValue(0)
	}
	delay := call.Argument(1).ToInteger()
	if delay < 0 {
		delay = 0
	}
	e.nextTimer++
	id := e.nextTimer
	e.timers[id] = true
	extra := append([]goja.Value(nil), call.Arguments[min(2, len(call.Arguments)):]...)
	e.doc.ctx.host.loop.PostAfter(millis(delay), func() {
		if !e.timers[id] || !e.doc.live {
			return
		}
		delete(e.timers, id)
		if _, err := e.call(fn, goja.Undefined(), extra...); err != nil {
			e.logger.Debug("timer callback failed", zap.Error(err))
		}
	})
	return e.vm.ToValue(id)
}

func (e *Engine) installConsole(global *goja.Object) {
	console := e.vm.NewObject()
	logFunc := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			e.logger.Debug("console", zap.String("level", level), zap.String("message", strings.Join(parts, " ")))
			return goja.Undefined()
		}
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, logFunc(level))
	}
	_ = global.Set("console", console)
}

// --- Document ---

func (e *Engine) newDocumentObject() *goja.Object {
	vm := e.vm
	d := vm.NewObject()
	_ = d.Set("nodeType", 9)

	e.accessor(d, "documentElement", func(goja.FunctionCall) goja.Value {
		return e.wrap(e.doc.documentElement())
	}, nil)
	e.accessor(d, "body", func(goja.FunctionCall) goja.Value {
		return e.wrap(e.doc.body())
	}, nil)
	e.accessor(d, "head", func(goja.FunctionCall) goja.Value {
		return e.wrap(e.doc.head())
	}, nil)
	e.accessor(d, "title", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(e.doc.title())
	}, func(call goja.FunctionCall) goja.Value {
		e.doc.setTitle(call.Argument(0).String())
		return goja.Undefined()
	})
	e.accessor(d, "URL", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(e.doc.url)
	}, nil)
	e.accessor(d, "readyState", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(string(e.doc.ctx.state))
	}, nil)
	e.accessor(d, "defaultView", func(goja.FunctionCall) goja.Value {
		return e.window
	}, nil)

	_ = d.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		id := call.Argument(0).String()
		return e.wrap(findFirst(e.doc.root, func(n *html.Node) bool {
			v, ok := getAttr(n, "id")
			return ok && v == id
		}))
	})
	_ = d.Set("getElementsByName", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		return e.wrapCollection(findAll(e.doc.root, func(n *html.Node) bool {
			v, ok := getAttr(n, "name")
			return ok && v == name
		}))
	})
	_ = d.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(byTagName(e.doc.root, call.Argument(0).String()))
	})
	_ = d.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(byClassName(e.doc.root, call.Argument(0).String()))
	})
	_ = d.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return e.wrap(e.querySelector(e.doc.root, call.Argument(0).String()))
	})
	_ = d.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(e.querySelectorAll(e.doc.root, call.Argument(0).String()))
	})
	_ = d.Set("evaluate", e.evaluateXPath)
	_ = d.Set("createElement", func(call goja.FunctionCall) goja.Value {
		tag := strings.ToLower(call.Argument(0).String())
		return e.wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
	})
	_ = d.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return e.wrap(&html.Node{Type: html.TextNode, Data: call.Argument(0).String()})
	})
	return d
}

// evaluateXPath implements the snapshot and first-node forms of document.evaluate.
func (e *Engine) evaluateXPath(call goja.FunctionCall) goja.Value {
	vm := e.vm
	expr := call.Argument(0).String()
	contextNode := e.unwrap(call.Argument(1))
	if contextNode == nil {
		contextNode = e.doc.root
	}
	resultType := call.Argument(3).ToInteger()

	compiled, err := xpath.Compile(expr)
	if err != nil {
		e.throw("SyntaxError", "invalid xpath: "+err.Error())
	}
	var nodes []*html.Node
	for _, n := range htmlquery.QuerySelectorAll(contextNode, compiled) {
		if n.Type == html.ElementNode {
			nodes = append(nodes, n)
		}
	}

	result := vm.NewObject()
	_ = result.Set("resultType", resultType)
	if resultType == xpathFirstOrdered {
		var first *html.Node
		if len(nodes) > 0 {
			first = nodes[0]
		}
		_ = result.Set("singleNodeValue", e.wrap(first))
		return result
	}
	_ = result.Set("snapshotLength", len(nodes))
	_ = result.Set("snapshotItem", func(call goja.FunctionCall) goja.Value {
		i := call.Argument(0).ToInteger()
		if i < 0 || int(i) >= len(nodes) {
			return goja.Null()
		}
		return e.wrap(nodes[i])
	})
	return result
}

func (e *Engine) querySelector(root *html.Node, selector string) *html.Node {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		e.throw("SyntaxError", "invalid selector: "+selector)
	}
	return sel.MatchFirst(root)
}

func (e *Engine) querySelectorAll(root *html.Node, selector string) []*html.Node {
	if _, err := cascadia.Compile(selector); err != nil {
		e.throw("SyntaxError", "invalid selector: "+selector)
	}
	return goquery.NewDocumentFromNode(root).Find(selector).Nodes
}

// --- Nodes ---

func (e *Engine) thisNode(call goja.FunctionCall) *html.Node {
	n := e.unwrap(call.This)
	if n == nil {
		e.throw("TypeError", "Illegal invocation")
	}
	return n
}

func (e *Engine) newNodeProto(element bool) *goja.Object {
	vm := e.vm
	p := vm.NewObject()

	e.accessor(p, "nodeType", func(call goja.FunctionCall) goja.Value {
		switch e.thisNode(call).Type {
		case html.ElementNode:
			return vm.ToValue(1)
		case html.CommentNode:
			return vm.ToValue(8)
		default:
			return vm.ToValue(3)
		}
	}, nil)
	e.accessor(p, "parentNode", func(call goja.FunctionCall) goja.Value {
		parent := e.thisNode(call).Parent
		if parent != nil && parent.Type == html.DocumentNode {
			return e.document
		}
		return e.wrap(parent)
	}, nil)
	e.accessor(p, "textContent", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(textContent(e.thisNode(call)))
	}, func(call goja.FunctionCall) goja.Value {
		setText(e.thisNode(call), call.Argument(0).String())
		return goja.Undefined()
	})
	e.accessor(p, "ownerDocument", func(goja.FunctionCall) goja.Value {
		return e.document
	}, nil)
	if !element {
		e.accessor(p, "nodeName", func(goja.FunctionCall) goja.Value {
			return vm.ToValue("#text")
		}, nil)
		e.accessor(p, "data", func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(e.thisNode(call).Data)
		}, nil)
		return p
	}

	tagName := func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(strings.ToUpper(e.thisNode(call).Data))
	}
	e.accessor(p, "tagName", tagName, nil)
	e.accessor(p, "nodeName", tagName, nil)
	e.attrAccessor(p, "id")
	e.attrAccessor(p, "name")
	e.attrAccessorAs(p, "className", "class")
	e.accessor(p, "parentElement", func(call goja.FunctionCall) goja.Value {
		parent := e.thisNode(call).Parent
		if parent == nil || parent.Type != html.ElementNode {
			return goja.Null()
		}
		return e.wrap(parent)
	}, nil)
	e.accessor(p, "children", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(elementChildren(e.thisNode(call)))
	}, nil)
	e.accessor(p, "childNodes", func(call goja.FunctionCall) goja.Value {
		var out []*html.Node
		for c := e.thisNode(call).FirstChild; c != nil; c = c.NextSibling {
			out = append(out, c)
		}
		return e.wrapCollection(out)
	}, nil)
	e.accessor(p, "firstChild", func(call goja.FunctionCall) goja.Value {
		return e.wrap(e.thisNode(call).FirstChild)
	}, nil)
	e.accessor(p, "innerText", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(visibleText(e.thisNode(call)))
	}, nil)
	e.accessor(p, "innerHTML", func(call goja.FunctionCall) goja.Value {
		out, err := goquery.NewDocumentFromNode(e.thisNode(call)).Html()
		if err != nil {
			e.throw("Error", err.Error())
		}
		return vm.ToValue(out)
	}, func(call goja.FunctionCall) goja.Value {
		n := e.thisNode(call)
		if err := setInnerHTML(n, call.Argument(0).String()); err != nil {
			e.throw("SyntaxError", err.Error())
		}
		e.doc.loadNewFrames()
		return goja.Undefined()
	})
	e.accessor(p, "outerHTML", func(call goja.FunctionCall) goja.Value {
		out, err := goquery.OuterHtml(goquery.NewDocumentFromNode(e.thisNode(call)).Selection)
		if err != nil {
			e.throw("Error", err.Error())
		}
		return vm.ToValue(out)
	}, nil)
	e.accessor(p, "value", func(call goja.FunctionCall) goja.Value {
		n := e.thisNode(call)
		if n.DataAtom == atom.Textarea {
			return vm.ToValue(textContent(n))
		}
		v, _ := getAttr(n, "value")
		return vm.ToValue(v)
	}, func(call goja.FunctionCall) goja.Value {
		n := e.thisNode(call)
		if n.DataAtom == atom.Textarea {
			setText(n, call.Argument(0).String())
		} else {
			setAttr(n, "value", call.Argument(0).String())
		}
		return goja.Undefined()
	})
	e.accessor(p, "checked", func(call goja.FunctionCall) goja.Value {
		_, ok := getAttr(e.thisNode(call), "checked")
		return vm.ToValue(ok)
	}, func(call goja.FunctionCall) goja.Value {
		setBoolAttr(e.thisNode(call), "checked", call.Argument(0).ToBoolean())
		return goja.Undefined()
	})
	e.accessor(p, "disabled", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(isDisabled(e.thisNode(call)))
	}, func(call goja.FunctionCall) goja.Value {
		setBoolAttr(e.thisNode(call), "disabled", call.Argument(0).ToBoolean())
		return goja.Undefined()
	})
	e.accessor(p, "hidden", func(call goja.FunctionCall) goja.Value {
		_, ok := getAttr(e.thisNode(call), "hidden")
		return vm.ToValue(ok)
	}, func(call goja.FunctionCall) goja.Value {
		setBoolAttr(e.thisNode(call), "hidden", call.Argument(0).ToBoolean())
		return goja.Undefined()
	})
	e.accessor(p, "href", func(call goja.FunctionCall) goja.Value {
		v, ok := getAttr(e.thisNode(call), "href")
		if !ok {
			return vm.ToValue("")
		}
		return vm.ToValue(e.doc.resolve(v))
	}, nil)

	_ = p.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := getAttr(e.thisNode(call), call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = p.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		_, ok := getAttr(e.thisNode(call), call.Argument(0).String())
		return vm.ToValue(ok)
	})
	_ = p.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		setAttr(e.thisNode(call), call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = p.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		removeAttr(e.thisNode(call), call.Argument(0).String())
		return goja.Undefined()
	})
	_ = p.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		parent := e.thisNode(call)
		child := e.unwrap(call.Argument(0))
		if child == nil {
			e.throw("TypeError", "appendChild requires a node")
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		parent.AppendChild(child)
		e.doc.loadNewFrames()
		return call.Argument(0)
	})
	_ = p.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		parent := e.thisNode(call)
		child := e.unwrap(call.Argument(0))
		if child == nil || child.Parent != parent {
			e.throw("Error", "node is not a child")
		}
		parent.RemoveChild(child)
		e.doc.dropDetachedFrames()
		return call.Argument(0)
	})
	_ = p.Set("remove", func(call goja.FunctionCall) goja.Value {
		n := e.thisNode(call)
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
			e.doc.dropDetachedFrames()
		}
		return goja.Undefined()
	})
	_ = p.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return e.wrap(e.querySelector(e.thisNode(call), call.Argument(0).String()))
	})
	_ = p.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(e.querySelectorAll(e.thisNode(call), call.Argument(0).String()))
	})
	_ = p.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(byTagName(e.thisNode(call), call.Argument(0).String()))
	})
	_ = p.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		return e.wrapCollection(byClassName(e.thisNode(call), call.Argument(0).String()))
	})
	_ = p.Set("click", func(call goja.FunctionCall) goja.Value {
		e.click(e.thisNode(call))
		return goja.Undefined()
	})
	return p
}

func (e *Engine) attrAccessor(p *goja.Object, name string) {
	e.attrAccessorAs(p, name, name)
}

func (e *Engine) attrAccessorAs(p *goja.Object, prop, attr string) {
	e.accessor(p, prop, func(call goja.FunctionCall) goja.Value {
		v, _ := getAttr(e.thisNode(call), attr)
		return e.vm.ToValue(v)
	}, func(call goja.FunctionCall) goja.Value {
		setAttr(e.thisNode(call), attr, call.Argument(0).String())
		return goja.Undefined()
	})
}

func (e *Engine) accessor(obj *goja.Object, name string, getter, setter func(goja.FunctionCall) goja.Value) {
	var get, set goja.Value
	if getter != nil {
		get = e.vm.ToValue(getter)
	}
	if setter != nil {
		set = e.vm.ToValue(setter)
	}
	if err := obj.DefineAccessorProperty(name, get, set, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
		e.logger.Error("define accessor", zap.String("property", name), zap.Error(err))
	}
}

// click runs the onclick handler and then the element's default action.
func (e *Engine) click(n *html.Node) {
	if isDisabled(n) {
		return
	}
	if code, ok := getAttr(n, "onclick"); ok && code != "" {
		fn, err := e.compile("(function(event) { " + code + "\n})")
		if err != nil {
			e.throw("SyntaxError", err.Error())
		}
		res, err := fn(e.wrap(n))
		if err != nil {
			e.rethrow(err)
		}
		if res != nil && !goja.IsUndefined(res) && !res.ToBoolean() {
			return
		}
	}

	switch n.DataAtom {
	case atom.A:
		href, ok := getAttr(n, "href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if code, ok := strings.CutPrefix(href, "javascript:"); ok {
			if _, err := e.vm.RunString(code); err != nil {
				e.rethrow(err)
			}
			return
		}
		e.navigate(href)
	case atom.Input, atom.Button:
		typ := strings.ToLower(attrOr(n, "type", "submit"))
		if n.DataAtom == atom.Input && (typ == "checkbox" || typ == "radio") {
			_, checked := getAttr(n, "checked")
			if typ == "checkbox" {
				setBoolAttr(n, "checked", !checked)
			} else {
				setBoolAttr(n, "checked", true)
			}
			return
		}
		if typ == "submit" {
			if form := closest(n, atom.Form); form != nil {
				e.navigate(formURL(e.doc, form))
			}
		}
	}
}

// formURL builds the GET submission URL for form.
func formURL(doc *Document, form *html.Node) string {
	action := doc.resolve(attrOr(form, "action", doc.url))
	u, err := url.Parse(action)
	if err != nil {
		return action
	}
	q := url.Values{}
	for _, field := range findAll(form, func(n *html.Node) bool {
		return n.DataAtom == atom.Input || n.DataAtom == atom.Textarea || n.DataAtom == atom.Select
	}) {
		name, ok := getAttr(field, "name")
		if !ok || name == "" || isDisabled(field) {
			continue
		}
		typ := strings.ToLower(attrOr(field, "type", "text"))
		if typ == "checkbox" || typ == "radio" {
			if _, checked := getAttr(field, "checked"); !checked {
				continue
			}
			q.Add(name, attrOr(field, "value", "on"))
			continue
		}
		if typ == "submit" || typ == "button" {
			continue
		}
		if field.DataAtom == atom.Textarea {
			q.Add(name, textContent(field))
			continue
		}
		q.Add(name, attrOr(field, "value", ""))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
