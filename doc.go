// Package normalizr provides:
//
// - Normalize: decompose a nested value (maps, slices, scalars) into a flat,
// type-partitioned EntityStore plus a reference-based result, driven by a Schema
// - Denormalize: reconstruct the nested value from NormalizedData and the same Schema
// - An explicit Custom Type Registry for schema nodes the built-in variants cannot express
// - A Gate that serializes concurrent calls sharing the same (data, schema) fingerprint
//
// Design policy:
// - Keep the public surface in the root package; builders live under dsl/, the wire
// codec under codec/, schema documents under schemafile/ and the CLI under cmd/normalizr.
// - Engines are synchronous and allocate a fresh EntityStore per call.
// - Collaborators (validator, logger, redactor, observer, registry) are injected via Options.
//
// Typical usage:
//
//	user := dsl.Object("user").
//		Field("id", dsl.String()).Required().
//		Field("age", dsl.Number(dsl.Min(18))).
//		Build()
//	s := normalizr.NewSchema("user", user)
//
//	nd, err := normalizr.Normalize(ctx, data, s)
//	back, err := normalizr.Denormalize(ctx, nd, s)
//
//	nd, err = normalizr.SafeNormalize(ctx, data, s)
package normalizr
