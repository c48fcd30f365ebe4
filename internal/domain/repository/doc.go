// Package repository define los registros persistidos del dominio de cuentas
// y los errores sentinela compartidos por los drivers de almacenamiento.
//
// Los tipos de este paquete no conocen el medio: los handlers de
// internal/commands los reciben y devuelven a través de sus ports, y los
// drivers concretos viven en internal/store/pg.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│        HTTP controllers / services/accounts         │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│      commands (handlers puros + ports)              │
//	│      domain/repository (User, Profile, ...)         │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	         ┌──────────────┴──────────────┐
//	         ▼                             ▼
//	┌─────────────────┐          ┌──────────────────┐
//	│    store/pg     │          │ eventlog.Memory  │
//	│ (tx + eventos)  │          │   (dev / tests)  │
//	└─────────────────┘          └──────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de infraestructura envuelven ErrInfrastructure
//   - Errores de dominio están en internal/commands/errors.go
package repository
