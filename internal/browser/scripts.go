// internal/browser/scripts.go
package browser

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// The in-page scripts are function expressions so that rod can call them with
// arguments directly and chromedp can wrap them with Call.

// ExtractStateScript collects what the page shows. Argument: linkLimit.
const ExtractStateScript = `(linkLimit) => {
	const visible = (el) => {
		if (!el || !el.isConnected) return false;
		const style = window.getComputedStyle(el);
		if (style.visibility === 'hidden' || style.display === 'none') return false;
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	};
	const text = (el) => ((el.innerText || el.value || el.getAttribute('aria-label') || '') + '').trim();
	const out = { url: location.href, title: document.title, buttons: [], links: [], inputs: [], errors: [] };

	for (const el of document.querySelectorAll('button, input[type="submit"], a.btn')) {
		if (visible(el)) out.buttons.push(text(el));
	}

	for (const a of document.querySelectorAll('a[href]')) {
		if (out.links.length >= linkLimit) break;
		if (visible(a)) out.links.push({ text: text(a), href: a.getAttribute('href') || '' });
	}

	for (const el of document.querySelectorAll('input, textarea')) {
		if (!visible(el)) continue;
		out.inputs.push({
			type: el.getAttribute('type') || 'text',
			name: el.getAttribute('name') || '',
			placeholder: el.getAttribute('placeholder') || '',
		});
	}

	const body = document.body ? document.body.innerText.toLowerCase() : '';
	const keyword = ['error', 'invalid', 'failed', 'wrong', 'incorrect', 'required'].find((k) => body.includes(k));
	if (keyword) {
		const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_ELEMENT);
		const seen = new Set();
		while (walker.nextNode() && out.errors.length < 3) {
			const el = walker.currentNode;
			if (el.children.length > 0 || !visible(el)) continue;
			const t = text(el);
			if (t && t.toLowerCase().includes(keyword) && !seen.has(t)) {
				seen.add(t);
				out.errors.push(t);
			}
		}
	}
	return out;
}`

// ClickByTextScript clicks the first visible element of the given role whose
// accessible text equals label. Whitespace runs compare as one space, matching
// the labels Normalize reports. Arguments: role ("button" or "link"), label.
const ClickByTextScript = `(role, label) => {
	const selectors = {
		button: 'button, input[type="submit"], input[type="button"], [role="button"], a.btn',
		link: 'a[href], [role="link"]',
	};
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0 && window.getComputedStyle(el).visibility !== 'hidden';
	};
	const squash = (s) => (s + '').replace(/\s+/g, ' ').trim();
	const text = (el) => squash(el.innerText || el.value || el.getAttribute('aria-label') || '');
	const want = squash(label);
	for (const el of document.querySelectorAll(selectors[role] || selectors.button)) {
		if (visible(el) && text(el) === want) {
			el.scrollIntoView({ block: 'center' });
			el.click();
			return true;
		}
	}
	return false;
}`

// FillFormScript types values into the visible inputs keyed by name or
// placeholder and submits the enclosing form. Argument: values object.
// Returns the number of fields filled and whether a submission happened.
const FillFormScript = `(values) => {
	const setter = (el) => {
		const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
		return Object.getOwnPropertyDescriptor(proto, 'value').set;
	};
	let filled = 0;
	let form = null;
	for (const el of document.querySelectorAll('input, textarea')) {
		const key = el.getAttribute('name') || el.getAttribute('placeholder') || '';
		if (!key || !(key in values)) continue;
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) continue;
		el.focus();
		if (el.type === 'checkbox' || el.type === 'radio') {
			el.checked = String(values[key]).toLowerCase() === 'true';
		} else {
			setter(el).call(el, String(values[key]));
		}
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		filled++;
		form = form || el.form;
	}
	if (filled === 0) return { filled: 0, submitted: false };

	const scope = form || document;
	const submit = scope.querySelector('button[type="submit"], input[type="submit"], button:not([type])');
	if (submit) {
		submit.click();
		return { filled, submitted: true };
	}
	if (form) {
		if (form.requestSubmit) form.requestSubmit(); else form.submit();
		return { filled, submitted: true };
	}
	return { filled, submitted: false };
}`

// FillResult is what FillFormScript reports.
type FillResult struct {
	Filled    int  `json:"filled"`
	Submitted bool `json:"submitted"`
}

// Call renders a self-invoking expression that applies fn to args encoded as
// JSON literals.
func Call(fn string, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("failed to encode script argument %d: %w", i, err)
		}
		encoded[i] = string(b)
	}
	return fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ", ")), nil
}
