package main

// @title Product Catalog API
// @version 1.0
// @description Product catalog service with lifecycle management (create, update, discontinue, delete)

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8081
// @BasePath /
