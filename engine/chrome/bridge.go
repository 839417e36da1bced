package chrome

// bindingName is the Runtime binding the bridge posts messages through
const bindingName = "visitkitPost"

// bridgeScript is added to every new document. It keeps snapshots of rendered
// pages, runs script visits with fetch and the History API, and turns same
// origin link clicks into visit proposals.
const bridgeScript = `
(function() {
	if (window.visitkit) {
		return;
	}

	var snapshots = {};
	var visits = {};
	var restorationIdentifier = newIdentifier();

	function newIdentifier() {
		var bytes = new Uint8Array(16);
		window.crypto.getRandomValues(bytes);
		bytes[6] = (bytes[6] & 0x0f) | 0x40;
		bytes[8] = (bytes[8] & 0x3f) | 0x80;
		var hex = Array.prototype.map.call(bytes, function(b) {
			return ("0" + b.toString(16)).slice(-2);
		}).join("");
		return [hex.slice(0, 8), hex.slice(8, 12), hex.slice(12, 16), hex.slice(16, 20), hex.slice(20)].join("-");
	}

	function post(name, data) {
		window.` + bindingName + `(JSON.stringify({name: name, data: data || {}}));
	}

	function live(identifier) {
		var visit = visits[identifier];
		if (visit === undefined || visit.state !== "started") {
			return null;
		}
		return visit;
	}

	function render(html) {
		var doc = new DOMParser().parseFromString(html, "text/html");
		document.documentElement.replaceWith(document.adoptNode(doc.documentElement));
	}

	function cacheSnapshot() {
		snapshots[window.location.href] = document.documentElement.outerHTML;
	}

	window.visitkit = {
		startVisit: function(location, action, rid) {
			var identifier = newIdentifier();
			visits[identifier] = {
				location: location,
				action: action,
				restorationIdentifier: rid || newIdentifier(),
				state: "started"
			};
			post("visitStarted", {identifier: identifier, hasCachedSnapshot: snapshots.hasOwnProperty(location)});
			return identifier;
		},

		issueRequest: function(identifier) {
			var visit = live(identifier);
			if (visit === null) {
				return;
			}
			post("visitRequestStarted", {identifier: identifier});
			fetch(visit.location, {credentials: "same-origin", headers: {"Accept": "text/html, application/xhtml+xml"}})
				.then(function(response) {
					return response.text().then(function(body) {
						if (live(identifier) === null) {
							return;
						}
						if (response.ok) {
							visit.response = body;
							post("visitRequestCompleted", {identifier: identifier});
						} else {
							post("visitRequestFailed", {identifier: identifier, statusCode: response.status});
						}
						post("visitRequestFinished", {identifier: identifier});
					});
				})
				.catch(function() {
					if (live(identifier) === null) {
						return;
					}
					post("visitRequestFailed", {identifier: identifier, statusCode: 0});
					post("visitRequestFinished", {identifier: identifier});
				});
		},

		changeHistory: function(identifier) {
			var visit = live(identifier);
			if (visit === null) {
				return;
			}
			cacheSnapshot();
			var state = {visitkit: {restorationIdentifier: visit.restorationIdentifier}};
			if (visit.action === "advance") {
				history.pushState(state, "", visit.location);
			} else if (visit.action === "replace") {
				history.replaceState(state, "", visit.location);
			}
		},

		loadCachedSnapshot: function(identifier) {
			var visit = live(identifier);
			if (visit === null || !snapshots.hasOwnProperty(visit.location)) {
				return;
			}
			render(snapshots[visit.location]);
			post("visitRendered", {identifier: identifier});
		},

		loadResponse: function(identifier) {
			var visit = live(identifier);
			if (visit === null || visit.response === undefined) {
				return;
			}
			render(visit.response);
			snapshots[visit.location] = visit.response;
			restorationIdentifier = visit.restorationIdentifier;
			visit.state = "completed";
			post("visitRendered", {identifier: identifier});
			post("visitCompleted", {identifier: identifier, restorationIdentifier: visit.restorationIdentifier});
		},

		cancelVisit: function(identifier) {
			var visit = live(identifier);
			if (visit !== null) {
				visit.state = "canceled";
			}
		}
	};

	document.addEventListener("click", function(event) {
		var link = event.target && event.target.closest ? event.target.closest("a[href]") : null;
		if (link === null || link.origin !== window.location.origin || link.target) {
			return;
		}
		event.preventDefault();
		post("visitProposed", {location: link.href, action: "advance"});
	}, true);

	window.addEventListener("popstate", function() {
		post("visitProposed", {location: window.location.href, action: "restore"});
	});

	window.addEventListener("load", function() {
		setTimeout(function() {
			cacheSnapshot();
			post("pageLoaded", {restorationIdentifier: restorationIdentifier});
		}, 0);
	});
})();
`
