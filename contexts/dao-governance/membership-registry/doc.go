// Package membershipregistry tracks ownership of governance units. Owning
// at least one unit is what makes a principal a DAO member.
package membershipregistry
