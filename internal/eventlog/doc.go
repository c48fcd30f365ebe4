// Package eventlog implementa el log de eventos append-only indexado por tags.
//
// Un Event lleva un conjunto ordenado de Tag (key/value). Las lecturas se
// expresan como un Query: una disyunción (OR) de TagGroup, donde cada grupo es
// una conjunción (AND) de tags. Un evento matchea un grupo si contiene todos sus
// tags; matchea el query si matchea al menos un grupo.
//
//	q := eventlog.NewQuery(
//	    eventlog.NewTagGroup(eventlog.T("domain", "registration"), eventlog.T("eventType", "UserRegistered")),
//	    eventlog.NewTagGroup(eventlog.T("userId", id)),
//	)
//	events, err := log.Query(ctx, q)
//
// El paquete define el contrato (Log) y una implementación en memoria con
// índice invertido (Memory). La implementación PostgreSQL vive en store/pg y
// es la que se usa cuando el append tiene que ser atómico con una mutación
// relacional.
package eventlog
