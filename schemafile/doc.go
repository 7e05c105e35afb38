// Package schemafile loads and writes normalizr schemas as YAML or JSON documents.
//
// A document is a mapping of top-level declaration keys to schema nodes; the
// first key is the root. Declaration order of keys and properties is kept.
//
//	user:
//	  type: object
//	  name: user
//	  identity: id        # optional; "-" makes the object inline-only
//	  required: [id]
//	  properties:
//	    id: {type: string}
//	    age: {type: number, minimum: 18}
//	    friends: {type: array, items: {$ref: user}}
//
// $ref refers to a named object declared anywhere in the document, which is how
// recursive schemas are written.
package schemafile
