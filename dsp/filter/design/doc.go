// Package design computes biquad coefficients for the filters used by the
// processing chain.
package design
