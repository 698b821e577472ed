// Package reconcile implements the bulk import engine that reconciles a batch
// of spreadsheet rows against the persisted records of one tenant.
//
// An import runs through a fixed pipeline:
//
//  1. Validator: blank rows are dropped, every remaining row is checked
//     against the ordered rules of the entity. The first failing rule of a row
//     is reported.
//  2. Uniqueness: values of the unique fields must not repeat in the batch.
//  3. Matcher: each row is resolved to at most one persisted record by its
//     natural key, with an optional fallback key.
//  4. Deletion selector: records absent from the batch and without dependent
//     transactions are selected for deletion. Records with dependents are
//     never deleted.
//  5. Applier: the plan is written in a single transaction, deletes first,
//     then updates, then creates. On any failure nothing is persisted.
//  6. Reporter: the applied counts are rendered as a summary.
//
// Any validation or duplicate error rejects the whole batch before the
// database is touched. Imports of the same entity and tenant are serialized;
// different tenants never contend.
//
// # Adapters
//
// The engine does not know which entity it reconciles. Each entity type
// implements Adapter, which supplies the rules, key extraction, population
// loading and the mutations:
//
//	spec := &reconcile.Spec{
//	    Adapter: clients.NewAdapter(cacheTTL),
//	    Config:  cfg.Reconcile,
//	    Logger:  logger,
//	}
//
//	// Plan only
//	outcome, err := reconcile.Import(ctx, spec, db, tenant, rows, reconcile.Options{DryRun: true})
//
//	// Plan and apply
//	outcome, err = reconcile.Import(ctx, spec, db, tenant, rows, reconcile.Options{Confirmed: true})
package reconcile
