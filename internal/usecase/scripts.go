package usecase

import (
	"encoding/json"
	"fmt"
)

// Script payloads evaluated in the remote page. They are opaque to the
// facade, which only extracts the result field of the evaluate response.

func colorAnalysisScript() string {
	return `() => {
		const elements = document.querySelectorAll('*');
		const colorMap = new Map();

		elements.forEach(el => {
			const style = window.getComputedStyle(el);
			const color = style.color;
			const bgColor = style.backgroundColor;

			if (color && color !== 'rgba(0, 0, 0, 0)') {
				colorMap.set(color, (colorMap.get(color) || 0) + 1);
			}
			if (bgColor && bgColor !== 'rgba(0, 0, 0, 0)') {
				colorMap.set(bgColor, (colorMap.get(bgColor) || 0) + 1);
			}
		});

		return Array.from(colorMap.entries())
			.sort((a, b) => b[1] - a[1])
			.map(([color, count]) => ({ color, count }));
	}`
}

func accessibilityChecksScript() string {
	return `() => {
		const checks = {
			images_without_alt: [],
			missing_labels: [],
			heading_structure: [],
			links_without_text: []
		};

		document.querySelectorAll('img').forEach(img => {
			if (!img.alt) {
				checks.images_without_alt.push(img.src || 'inline-image');
			}
		});

		document.querySelectorAll('input, select, textarea').forEach(input => {
			const id = input.id;
			const ariaLabel = input.getAttribute('aria-label');
			if (id && !document.querySelector('label[for="' + id + '"]') && !ariaLabel) {
				checks.missing_labels.push({
					type: input.type,
					name: input.name || 'unnamed',
					id: id
				});
			}
		});

		const headings = document.querySelectorAll('h1, h2, h3, h4, h5, h6');
		checks.heading_structure = Array.from(headings).map(h => ({
			level: h.tagName,
			text: h.textContent.substring(0, 50)
		}));

		document.querySelectorAll('a').forEach(link => {
			if (!link.textContent.trim() && !link.querySelector('img')) {
				checks.links_without_text.push(link.href);
			}
		});

		return checks;
	}`
}

func performanceScript() string {
	return `() => {
		const perfData = performance.getEntriesByType('navigation')[0];
		const paintEntries = performance.getEntriesByType('paint');

		return {
			domContentLoaded: perfData.domContentLoadedEventEnd - perfData.domContentLoadedEventStart,
			loadComplete: perfData.loadEventEnd - perfData.loadEventStart,
			domInteractive: perfData.domInteractive,
			responseTime: perfData.responseEnd - perfData.requestStart,
			firstPaint: paintEntries.find(e => e.name === 'first-paint')?.startTime ?? null,
			firstContentfulPaint: paintEntries.find(e => e.name === 'first-contentful-paint')?.startTime ?? null
		};
	}`
}

// injectStyleScript embeds the CSS as a JS string literal so arbitrary
// quoting in the stylesheet cannot break out of the script.
func injectStyleScript(css string) string {
	encoded, _ := json.Marshal(css)

	return fmt.Sprintf(`() => {
		const style = document.createElement('style');
		style.textContent = %s;
		document.head.appendChild(style);
	}`, encoded)
}

func extractTextScript() string {
	return `() => document.body.innerText`
}
