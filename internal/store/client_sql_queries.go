// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	localInsertRecord = `
		INSERT INTO store (
			client_id,
			host,
			tag,
			idx,
			timestamp,
			version,
			data,
			cek
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	localRecordExists = `
		SELECT 1
		FROM store
		WHERE client_id = $1;`

	localNextRecords = `
		SELECT
			client_id,
			host,
			tag,
			idx,
			timestamp,
			version,
			data,
			cek
		FROM store
		WHERE host = $1 AND tag = $2 AND idx >= $3
		ORDER BY idx ASC
		LIMIT $4;`

	localTailRecord = `
		SELECT
			client_id,
			host,
			tag,
			idx,
			timestamp,
			version,
			data,
			cek
		FROM store
		WHERE host = $1 AND tag = $2
		ORDER BY idx DESC
		LIMIT 1;`

	localHead = `
		SELECT idx
		FROM store_idx_cache
		WHERE host = $1 AND tag = $2;`

	localUpsertHead = `
		INSERT INTO store_idx_cache (host, tag, idx)
		VALUES ($1, $2, $3)
		ON CONFLICT (host, tag)
		DO UPDATE SET idx = MAX(store_idx_cache.idx, excluded.idx);`

	localStatus = `
		SELECT host, tag, idx
		FROM store_idx_cache;`

	localWipeRecords = `
		DELETE FROM store;`

	localWipeHeads = `
		DELETE FROM store_idx_cache;`

	localGetDevice = `
		SELECT host, encryption_salt, created_at
		FROM device
		LIMIT 1;`

	localInsertDevice = `
		INSERT INTO device (host, encryption_salt, created_at)
		VALUES ($1, $2, $3);`

	localUpdateDeviceSalt = `
		UPDATE device
		SET encryption_salt = $1;`
)
