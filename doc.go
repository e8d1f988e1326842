// Package safeapps is the entry point to the multisig apps configuration
// layer: a registry of known programs, a provider that fetches each app's UI
// schema and program definition, and a merger that pairs them into
// renderable instructions.
//
// Most callers only need GetAppConfig:
//
//	cfg := safeapps.GetAppConfig(ctx, safeapps.Devnet, programID)
//	for _, ix := range cfg.UI {
//		...
//	}
//
// The packages under pkg/ expose each stage individually.
package safeapps
