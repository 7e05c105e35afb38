// Package dsl provides fluent builders for normalizr schemas.
//
// Entry points
//   - Object(name): object builder; chain Field(...).Required() and finish with Build().
//   - Array(items): array schema over an element schema.
//   - String(opts...), Number(opts...), Bool(): primitive leaves with optional constraints.
//   - Custom(name): extension node handled by a registered CustomHandler.
//
// Example
//
//	user := dsl.Object("user").
//		Field("id", dsl.String()).Required().
//		Field("name", dsl.String(dsl.MinLen(1))).
//		Field("age", dsl.Number(dsl.Min(18))).
//		Build()
//	// self references are closed after Build
//	user.Set("friends", dsl.Array(user))
//	s := normalizr.NewSchema("user", user)
package dsl
