package db

// SchemaSQL contains the catalog schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- TABLE_SIGNATURE TABLE
    -- ==========================================================================
    -- One record per extracted warehouse table. The embedding covers the
    -- space-joined column names; signatures are precomputed for overlap scoring.
    DEFINE TABLE IF NOT EXISTS table_signature SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON table_signature TYPE string;
    DEFINE FIELD IF NOT EXISTS platform ON table_signature TYPE string;
    DEFINE FIELD IF NOT EXISTS schema_name ON table_signature TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS columns ON table_signature TYPE array<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS column_text ON table_signature TYPE string;
    DEFINE FIELD IF NOT EXISTS type_signature ON table_signature TYPE string;
    DEFINE FIELD IF NOT EXISTS name_signature ON table_signature TYPE string;
    DEFINE FIELD IF NOT EXISTS row_count ON table_signature TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS column_count ON table_signature TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS embedding ON table_signature TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS contains_pii ON table_signature TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS sensitivity_level ON table_signature TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS extracted_at ON table_signature TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON table_signature TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS table_signature_platform ON table_signature FIELDS platform;
    DEFINE INDEX IF NOT EXISTS table_signature_name ON table_signature FIELDS platform, name UNIQUE;
    DEFINE INDEX IF NOT EXISTS table_signature_embedding ON table_signature FIELDS embedding HNSW DIMENSION 384 DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS table_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS table_signature_columns_ft ON table_signature FIELDS column_text FULLTEXT ANALYZER table_analyzer BM25;

    -- ==========================================================================
    -- SIMILAR_TO RELATION (duplicate-detection results)
    -- ==========================================================================
    -- One edge per scored pair above threshold. Sorted unique key keeps the
    -- edge direction-free; a new run overwrites the previous edge.
    DEFINE TABLE IF NOT EXISTS similar_to TYPE RELATION IN table_signature OUT table_signature SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS total_score ON similar_to TYPE float;
    DEFINE FIELD IF NOT EXISTS semantic_score ON similar_to TYPE float;
    DEFINE FIELD IF NOT EXISTS schema_score ON similar_to TYPE float;
    DEFINE FIELD IF NOT EXISTS statistical_score ON similar_to TYPE float;
    DEFINE FIELD IF NOT EXISTS relationship_score ON similar_to TYPE float;
    DEFINE FIELD IF NOT EXISTS confidence ON similar_to TYPE string;
    DEFINE FIELD IF NOT EXISTS matching_columns ON similar_to TYPE array<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS run_id ON similar_to TYPE string;
    DEFINE FIELD IF NOT EXISTS detected_at ON similar_to TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS unique_key ON similar_to VALUE <string>string::concat(array::sort([<string>in, <string>out]));
    DEFINE INDEX IF NOT EXISTS unique_similar_to ON similar_to FIELDS unique_key UNIQUE;
    DEFINE INDEX IF NOT EXISTS similar_to_confidence ON similar_to FIELDS confidence;

    -- ==========================================================================
    -- DERIVES_FROM RELATION (lineage)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS derives_from TYPE RELATION IN table_signature OUT table_signature SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS transformation ON derives_from TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON derives_from TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS unique_key ON derives_from VALUE <string>string::concat(<string>in, "->", <string>out);
    DEFINE INDEX IF NOT EXISTS unique_derives_from ON derives_from FIELDS unique_key UNIQUE;

    -- ==========================================================================
    -- REFERENCES_ENTITY RELATION (foreign-key style links between tables)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS references_entity TYPE RELATION IN table_signature OUT table_signature SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS via_column ON references_entity TYPE string;
    DEFINE FIELD IF NOT EXISTS created ON references_entity TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS unique_key ON references_entity VALUE <string>string::concat(<string>in, "->", <string>out, ":", via_column);
    DEFINE INDEX IF NOT EXISTS unique_references_entity ON references_entity FIELDS unique_key UNIQUE;

    -- ==========================================================================
    -- DETECTION_RUN TABLE (sweep bookkeeping)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS detection_run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON detection_run TYPE string;
    DEFINE FIELD IF NOT EXISTS source_platform ON detection_run TYPE string;
    DEFINE FIELD IF NOT EXISTS target_platform ON detection_run TYPE string;
    DEFINE FIELD IF NOT EXISTS pairs_scored ON detection_run TYPE int;
    DEFINE FIELD IF NOT EXISTS pairs_kept ON detection_run TYPE int;
    DEFINE FIELD IF NOT EXISTS min_threshold ON detection_run TYPE float;
    DEFINE FIELD IF NOT EXISTS started_at ON detection_run TYPE datetime;
    DEFINE FIELD IF NOT EXISTS finished_at ON detection_run TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS detection_run_id ON detection_run FIELDS run_id UNIQUE;
`
