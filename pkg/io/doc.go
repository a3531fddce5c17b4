// Package io exports resolved dependency graphs as JSON.
//
// The format has a root object and two arrays:
//
//	{
//	  "meta": {"root": "com.acme:app:1.0"},
//	  "nodes": [
//	    {"id": "com.acme:app:1.0"},
//	    {"id": "com.acme:core:2.0", "row": 1, "meta": {"scope": "compile", "version": "2.0"}}
//	  ],
//	  "edges": [
//	    {"from": "com.acme:app:1.0", "to": "com.acme:core:2.0"}
//	  ]
//	}
//
// Node ids are coordinates, rows are depths below the root and edges point
// from a dependent to its dependency. Nodes appear row by row in the order
// they were added, so output is stable for a stable graph.
package io
