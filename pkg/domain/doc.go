// Package domain contains the entities shared by the contact lookup pipeline:
// the company query, the contact bundle returned to callers and the string
// set used for every extracted category.
package domain
