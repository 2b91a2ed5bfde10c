// Package nftmarketplace is the fixed-price asset market that passed
// governance proposals buy from. Every asset starts unowned and can be
// bought exactly once at the uniform price.
package nftmarketplace
