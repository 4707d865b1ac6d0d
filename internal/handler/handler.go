// Package handler is the first layer after the router.
//
// It reads requests, runs them through the shared binding and validation
// pipeline, calls the service layer and writes responses. It also adapts
// API Gateway events so the same function runs on AWS Lambda.
package handler
