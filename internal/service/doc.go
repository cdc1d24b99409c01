// Package service holds the catalog use cases between the HTTP handlers and
// the store interfaces.
//
// CatalogService manages stores and items: it checks that a parent store
// exists before an item is written, keeps an item's store fixed on upsert and
// emits a catalog event after every successful write. TaggingService owns the
// store-scoped tags and their links to items; a tag can only be deleted once
// no item carries it. UserService reads and deletes user accounts.
// Registration, login and tokens live in the auth subpackage.
//
// Failures are wrapped in ServiceError so handlers can still match the
// domain and store sentinels with errors.Is.
package service
