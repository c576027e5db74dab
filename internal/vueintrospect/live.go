package vueintrospect

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/corescan/corescan/internal/corelog"
)

// DefaultMaxDepth bounds the root-finding BFS (spec §4.8).
const DefaultMaxDepth = 1000

// LiveIntrospector drives a live page via rod to locate the Vue root and
// router, then enumerates and optionally patches its routes (spec §4.8's
// live-DOM branch).
type LiveIntrospector struct {
	page     *rod.Page
	maxDepth int
	log      *corelog.Logger
}

// NewLiveIntrospector wraps a rod Page for Vue introspection.
func NewLiveIntrospector(page *rod.Page, log *corelog.Logger) *LiveIntrospector {
	if log == nil {
		log = corelog.NewDefault()
	}
	return &LiveIntrospector{page: page, maxDepth: DefaultMaxDepth, log: log.WithComponent("vueintrospect")}
}

// findRootScript BFS-walks from document.body bounded by maxDepth,
// returning the first element exposing __vue_app__ (Vue 3), __vue__
// (Vue 2), or _vnode.
const findRootScript = `(maxDepth) => {
	let queue = [document.body];
	let depth = 0;
	while (queue.length > 0 && depth < maxDepth) {
		let next = [];
		for (const el of queue) {
			if (!el) continue;
			if (el.__vue_app__ || el.__vue__ || el._vnode) {
				return { found: true, hasVue3: !!el.__vue_app__, hasVue2: !!el.__vue__ };
			}
			for (const child of el.children || []) next.push(child);
		}
		queue = next;
		depth++;
	}
	return { found: false };
}`

// FindRoot reports whether a Vue root element was located within
// maxDepth, and which major version it exposes.
func (l *LiveIntrospector) FindRoot() (found bool, isVue3 bool, err error) {
	res, err := l.page.Eval(findRootScript, l.maxDepth)
	if err != nil {
		return false, false, fmt.Errorf("vueintrospect: find root: %w", err)
	}
	m, _ := res.Value.Val().(map[string]interface{})
	found, _ = m["found"].(bool)
	isVue3, _ = m["hasVue3"].(bool)
	return found, isVue3, nil
}

// findRouterScript implements spec §4.8's router-lookup chain for both
// Vue 3 (globalProperties/appContext/ctx/provides) and Vue 2 (ancestor
// $router walk).
const findRouterScript = `() => {
	function findRoot() {
		let queue = [document.body];
		let depth = 0;
		while (queue.length > 0 && depth < 1000) {
			let next = [];
			for (const el of queue) {
				if (!el) continue;
				if (el.__vue_app__ || el.__vue__ || el._vnode) return el;
				for (const child of el.children || []) next.push(child);
			}
			queue = next;
			depth++;
		}
		return null;
	}

	let root = findRoot();
	if (!root) return { found: false };

	if (root.__vue_app__) {
		let app = root.__vue_app__;
		let router = app.config && app.config.globalProperties && app.config.globalProperties.$router;
		if (!router && app._instance) {
			router = app._instance.appContext && app._instance.appContext.config &&
				app._instance.appContext.config.globalProperties && app._instance.appContext.config.globalProperties.$router;
		}
		if (!router && app._instance && app._instance.ctx) {
			router = app._instance.ctx.$router;
		}
		if (!router && app._instance && app._instance.provides) {
			for (const key of Object.getOwnPropertySymbols(app._instance.provides)) {
				let candidate = app._instance.provides[key];
				if (candidate && candidate.push && candidate.options) { router = candidate; break; }
			}
		}
		if (router) return { found: true, version: 3 };
	}

	if (root.__vue__) {
		let vm = root.__vue__;
		while (vm && !vm.$router) vm = vm.$parent;
		if (vm && vm.$router) return { found: true, version: 2 };
	}

	return { found: false };
}`

// FindRouter reports whether a router instance was located via the chain
// of spec §4.8, and which Vue major version it targets.
func (l *LiveIntrospector) FindRouter() (found bool, version int, err error) {
	res, err := l.page.Eval(findRouterScript)
	if err != nil {
		return false, 0, fmt.Errorf("vueintrospect: find router: %w", err)
	}
	m, _ := res.Value.Val().(map[string]interface{})
	found, _ = m["found"].(bool)
	if v, ok := m["version"].(float64); ok {
		version = int(v)
	}
	return found, version, nil
}

// listRoutesScript implements spec §4.8's preference order:
// getRoutes() -> recursive options.routes descent -> matcher.getRoutes()
// -> history.current.matched.
const listRoutesScript = `() => {
	function findRouter() {
		function findRoot() {
			let queue = [document.body];
			let depth = 0;
			while (queue.length > 0 && depth < 1000) {
				let next = [];
				for (const el of queue) {
					if (!el) continue;
					if (el.__vue_app__ || el.__vue__ || el._vnode) return el;
					for (const child of el.children || []) next.push(child);
				}
				queue = next;
				depth++;
			}
			return null;
		}
		let root = findRoot();
		if (!root) return null;
		if (root.__vue_app__) {
			let app = root.__vue_app__;
			let router = app.config && app.config.globalProperties && app.config.globalProperties.$router;
			if (!router && app._instance) {
				router = app._instance.appContext && app._instance.appContext.config &&
					app._instance.appContext.config.globalProperties && app._instance.appContext.config.globalProperties.$router;
			}
			return router || null;
		}
		if (root.__vue__) {
			let vm = root.__vue__;
			while (vm && !vm.$router) vm = vm.$parent;
			return vm ? vm.$router : null;
		}
		return null;
	}

	let router = findRouter();
	if (!router) return [];

	let out = [];
	function toMeta(meta) {
		let m = {};
		if (meta) for (const k in meta) m[k] = String(meta[k]);
		return m;
	}

	if (typeof router.getRoutes === 'function') {
		for (const r of router.getRoutes()) {
			out.push({ path: r.path, name: r.name || '', meta: toMeta(r.meta) });
		}
		return out;
	}

	if (router.options && router.options.routes) {
		function walk(list, prefix) {
			for (const r of list) {
				let path = r.path.startsWith('/') ? r.path : (prefix + '/' + r.path);
				out.push({ path: path, name: r.name || '', meta: toMeta(r.meta) });
				if (r.children) walk(r.children, path);
			}
		}
		walk(router.options.routes, '');
		return out;
	}

	if (router.matcher && typeof router.matcher.getRoutes === 'function') {
		for (const r of router.matcher.getRoutes()) {
			out.push({ path: r.path, name: r.name || '', meta: toMeta(r.meta) });
		}
		return out;
	}

	if (router.history && router.history.current && router.history.current.matched) {
		for (const r of router.history.current.matched) {
			out.push({ path: r.path, name: r.name || '', meta: toMeta(r.meta) });
		}
	}
	return out;
}`

// ListRoutes enumerates the router's routes via the fallback chain above.
func (l *LiveIntrospector) ListRoutes() ([]RouteRecord, error) {
	res, err := l.page.Eval(listRoutesScript)
	if err != nil {
		return nil, fmt.Errorf("vueintrospect: list routes: %w", err)
	}
	arr, _ := res.Value.Val().([]interface{})
	out := make([]RouteRecord, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		path, _ := m["path"].(string)
		name, _ := m["name"].(string)
		meta := map[string]string{}
		if rawMeta, ok := m["meta"].(map[string]interface{}); ok {
			for k, v := range rawMeta {
				if s, ok := v.(string); ok {
					meta[k] = s
				}
			}
		}
		out = append(out, newRouteRecord(path, name, path, "live", meta))
	}
	return out, nil
}

// clearGuardsScript replaces beforeEach/beforeResolve/afterEach with
// no-ops and empties their guard arrays/sets (spec §4.8's optional guard
// patch).
const clearGuardsScript = `() => {
	function findRouter() {
		let queue = [document.body];
		let depth = 0;
		while (queue.length > 0 && depth < 1000) {
			let next = [];
			for (const el of queue) {
				if (!el) continue;
				if (el.__vue_app__) {
					return el.__vue_app__.config.globalProperties.$router;
				}
				if (el.__vue__) {
					let vm = el.__vue__;
					while (vm && !vm.$router) vm = vm.$parent;
					if (vm) return vm.$router;
				}
				for (const child of el.children || []) next.push(child);
			}
			queue = next;
			depth++;
		}
		return null;
	}
	let router = findRouter();
	if (!router) return false;
	router.beforeEach = () => {};
	router.beforeResolve = () => {};
	router.afterEach = () => {};
	if (router.beforeGuards) {
		if (typeof router.beforeGuards.clear === 'function') router.beforeGuards.clear();
		else router.beforeGuards.length = 0;
	}
	if (router.beforeResolveGuards) router.beforeResolveGuards.length = 0;
	if (router.afterGuards) router.afterGuards.length = 0;
	return true;
}`

// ClearGuards replaces navigation guards with no-ops, if enabled in
// settings (spec §4.8).
func (l *LiveIntrospector) ClearGuards() (bool, error) {
	res, err := l.page.Eval(clearGuardsScript)
	if err != nil {
		return false, fmt.Errorf("vueintrospect: clear guards: %w", err)
	}
	ok, _ := res.Value.Val().(bool)
	return ok, nil
}

// AuthPatchResult records one route-meta modification made by PatchAuth.
type AuthPatchResult struct {
	Path         string
	MetaKey      string
	OriginalValue string
}

// patchAuthScript flips every auth-truthy meta value to false across the
// router's route records, recording each modification (spec §4.8).
const patchAuthScript = `() => {
	function findRouter() {
		let queue = [document.body];
		let depth = 0;
		while (queue.length > 0 && depth < 1000) {
			let next = [];
			for (const el of queue) {
				if (!el) continue;
				if (el.__vue_app__) return el.__vue_app__.config.globalProperties.$router;
				if (el.__vue__) {
					let vm = el.__vue__;
					while (vm && !vm.$router) vm = vm.$parent;
					if (vm) return vm.$router;
				}
				for (const child of el.children || []) next.push(child);
			}
			queue = next;
			depth++;
		}
		return null;
	}
	let router = findRouter();
	if (!router) return [];

	let authKeys = ['auth', 'requireauth', 'requiresauth', 'authenticated', 'login', 'permission', 'role'];
	function isAuthKey(k) {
		let lower = k.toLowerCase();
		return authKeys.some(a => lower.includes(a));
	}
	function isTruthy(v) {
		if (v === true || v === 1) return true;
		if (Array.isArray(v)) return v.length > 0;
		if (typeof v === 'object' && v !== null) return Object.keys(v).length > 0;
		return !!v;
	}

	let modified = [];
	let routes = typeof router.getRoutes === 'function' ? router.getRoutes() : (router.options ? router.options.routes : []);
	function walk(list) {
		for (const r of list) {
			if (r.meta) {
				for (const k in r.meta) {
					if (isAuthKey(k) && isTruthy(r.meta[k])) {
						modified.push({ path: r.path, key: k, original: String(r.meta[k]) });
						r.meta[k] = false;
					}
				}
			}
			if (r.children) walk(r.children);
		}
	}
	walk(routes || []);
	return modified;
}`

// PatchAuth flips every auth-truthy meta value to false, recording each
// modification (spec §4.8's optional auth patch).
func (l *LiveIntrospector) PatchAuth() ([]AuthPatchResult, error) {
	res, err := l.page.Eval(patchAuthScript)
	if err != nil {
		return nil, fmt.Errorf("vueintrospect: patch auth: %w", err)
	}
	arr, _ := res.Value.Val().([]interface{})
	out := make([]AuthPatchResult, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		path, _ := m["path"].(string)
		key, _ := m["key"].(string)
		original, _ := m["original"].(string)
		out = append(out, AuthPatchResult{Path: path, MetaKey: key, OriginalValue: original})
	}
	return out, nil
}
