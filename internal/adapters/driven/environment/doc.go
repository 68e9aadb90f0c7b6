// Package environment groups the EnvironmentManager implementations, one
// sub-package per domain.Strategy:
//
//   - venv: python -m venv plus pip and requirements.txt
//   - conda: conda env create/update from conda-env.yml
package environment
