package mysql

// Column order shared by insert and select.
const attorneyColumns = `id, name, source, lat, lng, location, detailed_location,
  phone, website, email, address, rating, cases,
  specialization, languages, social_media, reviews, verified, last_updated`

const insertAttorneysPrefix = "INSERT INTO attorneys\n  (" + attorneyColumns + ")\nVALUES "

// COALESCE keeps stored contact details when a newer sighting lacks them.
const insertAttorneysOnDup = ` ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  source            = VALUES(source),
  lat               = COALESCE(VALUES(lat), attorneys.lat),
  lng               = COALESCE(VALUES(lng), attorneys.lng),
  location          = VALUES(location),
  detailed_location = VALUES(detailed_location),
  phone             = COALESCE(VALUES(phone), attorneys.phone),
  website           = COALESCE(VALUES(website), attorneys.website),
  email             = COALESCE(VALUES(email), attorneys.email),
  address           = COALESCE(VALUES(address), attorneys.address),
  rating            = VALUES(rating),
  cases             = VALUES(cases),
  specialization    = VALUES(specialization),
  languages         = VALUES(languages),
  social_media      = COALESCE(VALUES(social_media), attorneys.social_media),
  reviews           = VALUES(reviews),
  verified          = VALUES(verified),
  last_updated      = VALUES(last_updated),
  updated_at        = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO upstream_misses (cache_key, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE hits = hits + 1, seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Records inside a lat/lng window; served by idx_attorneys_lat_lng.
const listNearSQL = `
SELECT ` + attorneyColumns + `
FROM attorneys
WHERE lat BETWEEN ? AND ?
  AND lng BETWEEN ? AND ?
  AND source <> 'mock'
ORDER BY rating DESC, cases DESC, id
LIMIT ?
`
