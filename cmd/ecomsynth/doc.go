// Command ecomsynth generates a synthetic e-commerce dataset, loads it into
// a relational store and runs the analytical report queries against it.
//
//	ecomsynth generate --seed 42 --scale 1        # CSVs into synthetic_ecom_data/
//	ecomsynth verify                              # re-check every invariant
//	ecomsynth load --ltv                          # database/ecommerce.db (+ customer_ltv.csv)
//	ecomsynth report --query top_customers --format csv
//	ecomsynth schema                              # migration status of the store
//
// Flag defaults come from config/app.json, .env and the environment; an
// explicit flag always wins.
package main
