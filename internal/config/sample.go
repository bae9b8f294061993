package config

// Sample is the commented configuration written by `oas2types init`.
const Sample = `# oas2types configuration (YAML)
# Command-line flags override config values.

# Path or http(s) URL of the OpenAPI 3 / Swagger 2.0 contract.
input: ./openapi.yaml

# Where "oas2types snapshot" persists a key-sorted copy (path or s3://bucket/key).
# snapshot: ./snapshots/openapi.yaml

# Path prefix in front of every service segment.
prefix: /api/v1

# Root of the generated tree; each service writes <out>/<name>/types.go.
out: ./gen

# Export manifest; defaults to <out>/exports.yaml.
# manifest: ./gen/exports.yaml

# Services generated concurrently.
# concurrency: 4

# Name inline request bodies after their operationId (operationId becomes required).
# nameInlineRequests: false

# External emitter; {input} is the schema file, {package} the package name.
# The command prints Go source on stdout. Omit to use the built-in emitter.
# emitterCommand: [my-emitter, --package, "{package}", "{input}"]

# Name suffixes for promoted responses, query parameters and inline requests.
# suffixes:
#   response: Response
#   queryParam: Scope
#   request: Request

# Schemas never generated.
# denylist:
#   names: [Error, EmptyResponse]
#   suffixes: [ErrorResponse]

services:
  - name: billing
    # Also generate paths of these services into this package.
    # include: [invoices]
    # Skip sub-services that share a path prefix.
    # exclude: [billing/admin]
    # Keep only these types.
    # types: [Invoice, InvoiceList]
    # package: billing
    # output: ./gen/billing/types.go
`
