package sim

// pageScript runs inside every booted document. It plays the part of the in-page
// navigation controller: it owns snapshots, history entries and per-visit state,
// and reports progress back through host.postMessage.
const pageScript = `
var snapshots = {};
var visits = {};
var entries = [];
var current = {location: bootLocation, body: bootBody, restorationIdentifier: host.restorationIdentifier()};

function post(name, data) {
	host.postMessage(name, data || {});
}

function live(identifier) {
	var visit = visits[identifier];
	if (visit === undefined || visit.state !== "started") {
		return null;
	}
	return visit;
}

var controller = {
	boot: function() {
		snapshots[current.location] = current.body;
		entries.push({location: current.location, restorationIdentifier: current.restorationIdentifier});
		post("pageLoaded", {restorationIdentifier: current.restorationIdentifier});
	},

	startVisit: function(location, action, restorationIdentifier) {
		var identifier = host.uuid();
		visits[identifier] = {
			location: location,
			action: action,
			restorationIdentifier: restorationIdentifier || host.restorationIdentifier(),
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
		host.fetch(identifier, visit.location);
	},

	requestCompleted: function(identifier, statusCode, body) {
		var visit = live(identifier);
		if (visit === null) {
			return;
		}
		if (statusCode >= 200 && statusCode < 300) {
			visit.response = body;
			post("visitRequestCompleted", {identifier: identifier});
		} else {
			post("visitRequestFailed", {identifier: identifier, statusCode: statusCode});
		}
		post("visitRequestFinished", {identifier: identifier});
	},

	requestFailed: function(identifier, message) {
		var visit = live(identifier);
		if (visit === null) {
			return;
		}
		console.log("request failed", visit.location, message);
		post("visitRequestFailed", {identifier: identifier, statusCode: 0});
		post("visitRequestFinished", {identifier: identifier});
	},

	changeHistory: function(identifier) {
		var visit = live(identifier);
		if (visit === null) {
			return;
		}
		var entry = {location: visit.location, restorationIdentifier: visit.restorationIdentifier};
		if (visit.action === "advance") {
			entries.push(entry);
		} else if (visit.action === "replace" && entries.length > 0) {
			entries[entries.length - 1] = entry;
		}
	},

	loadCachedSnapshot: function(identifier) {
		var visit = live(identifier);
		if (visit === null || !snapshots.hasOwnProperty(visit.location)) {
			return;
		}
		current = {location: visit.location, body: snapshots[visit.location], restorationIdentifier: visit.restorationIdentifier};
		post("visitRendered", {identifier: identifier});
	},

	loadResponse: function(identifier) {
		var visit = live(identifier);
		if (visit === null || visit.response === undefined) {
			return;
		}
		current = {location: visit.location, body: visit.response, restorationIdentifier: visit.restorationIdentifier};
		snapshots[visit.location] = visit.response;
		visit.state = "completed";
		post("visitRendered", {identifier: identifier});
		post("visitCompleted", {identifier: identifier, restorationIdentifier: visit.restorationIdentifier});
	},

	cancelVisit: function(identifier) {
		var visit = live(identifier);
		if (visit !== null) {
			visit.state = "canceled";
		}
	},

	clickLink: function(location) {
		post("visitProposed", {location: location, action: "advance"});
	},

	body: function() {
		return current.body;
	},

	historyLength: function() {
		return entries.length;
	}
};
`
