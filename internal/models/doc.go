// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package models defines the data structures shared across the widget.

Key Components:

  - Sample: one recorded device position decoded from the location API
  - SampleSeries: a time-ordered run of samples with nearest-sample lookup,
    slider position mapping and path extraction
  - LocationsResponse: body of GET /api/locations
  - APIResponse, APIError, HealthStatus: envelopes served by internal/api

Sample Decoding:

Sample timestamps accept RFC 3339 and zone-less ISO 8601 forms; zone-less
values are read as UTC. Missing or null coordinates decode as zero and such
samples are left out of the drawn path.

Thread Safety:

All models are value types with no internal synchronization. A series is
never mutated after it is loaded; the widget replaces it wholesale.

See Also:

  - internal/locations: client that produces SampleSeries
  - internal/api: handlers returning these envelopes
*/
package models
