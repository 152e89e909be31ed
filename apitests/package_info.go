// Package apitests contains the contract scenarios for the facility API: sites, buildings,
// levels and the service endpoints. Each scenario runs against whatever base URL it is given
// and cleans up the entities it creates.
package apitests
