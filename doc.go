// Package splunk exposes the indexes of a Splunk deployment as tables of an
// Airport catalog.
//
// A Plugin serves one configured Splunk catalog. For every requesting
// identity it opens a Session whose table registry holds the synthetic "spl"
// table plus one table per index the identity can see. Index listings are
// cached per (identity, catalog) and expire after a period without access,
// so most opens never reach Splunk.
//
// # Quick Start
//
//	cfgs, err := splunk.LoadConfigs("catalogs.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := splunk.NewManagerFromConfigs(cfgs, splunk.PluginConfig{
//	    Registerer: prometheus.DefaultRegisterer,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := auth.WithIdentity(context.Background(), "alice")
//	session, err := m.Open(ctx, "prod")
//	if err != nil {
//	    log.Fatal(err) // *splunk.ConnectionError when Splunk is unreachable
//	}
//	for _, name := range session.TableNames() {
//	    fmt.Println(name)
//	}
//
// # Caching
//
// Creating a table invalidates the identity's cached listing; the next
// session re-fetches it. Dropping a table issues the delete, invalidates the
// entry and immediately stores a fresh listing. Splunk does not confirm
// deletes, so that listing may still contain the dropped index. A session's
// own registry never changes after it is opened.
//
// Setting cache_expiration to a negative value disables the cache: every
// open lists the indexes again.
//
// # Writes
//
// Writes are described, not executed. CreateNewTable and ModifyTable return
// a WriterFactory; the host passes the planned operator to NewWriter, which
// delegates to the configured WriterConstructor.
package splunk
